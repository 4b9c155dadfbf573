package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/joeycumines/walkthrough/internal/config"
)

// ListCommand lists the available scenarios.
type ListCommand struct {
	*BaseCommand
	config *config.Config
}

// NewListCommand creates a new list command.
func NewListCommand(cfg *config.Config) *ListCommand {
	return &ListCommand{
		BaseCommand: NewBaseCommand(
			"list",
			"List the available scenarios",
			"list",
		),
		config: cfg,
	}
}

// Execute prints one line per scenario.
func (c *ListCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := rejectArgs(args, stderr); err != nil {
		return err
	}
	catalog, err := openCatalog(c.config, c.Name())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tSTEPS\tSOURCE")
	for _, info := range catalog.List() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", info.Name, info.Title, info.Steps, info.Source)
	}
	return w.Flush()
}
