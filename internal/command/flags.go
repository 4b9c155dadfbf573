package command

import (
	"strconv"

	"github.com/joeycumines/walkthrough/internal/config"
)

// optionalInt is an int flag that records whether it was given, so config
// values apply only when it was not.
type optionalInt struct {
	value int
	set   bool
}

func (o *optionalInt) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.Itoa(o.value)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}

// optionalBool is the bool counterpart of optionalInt. It accepts the bare
// -name form.
type optionalBool struct {
	value bool
	set   bool
}

func (o *optionalBool) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatBool(o.value)
}

func (o *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}

func (o *optionalBool) IsBoolFlag() bool { return true }

// resolve returns the flag value when given, else the config value.
func (o *optionalBool) resolve(cfg *config.Config, section, key string) (bool, error) {
	if o.set {
		return o.value, nil
	}
	return config.DefaultSchema().ResolveBool(cfg, section, key)
}
