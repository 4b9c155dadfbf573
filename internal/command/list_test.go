package command

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/walkthrough/internal/config"
)

func TestListBuiltins(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	require.NoError(t, NewListCommand(config.NewConfig()).Execute(nil, &stdout, &bytes.Buffer{}))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Regexp(t, `^NAME\s+TITLE\s+STEPS\s+SOURCE$`, lines[0])
	assert.Regexp(t, `^rag\s+.+\s+\d+\s+builtin$`, lines[1])
	assert.Regexp(t, `^react\s+ReAct agent loop\s+28\s+builtin$`, lines[2])
}

func TestListScenarioPaths(t *testing.T) {
	t.Parallel()
	dir, _ := writeScenario(t, "tiny", tinyScenario)
	cfg := config.NewConfig()
	cfg.SetGlobalOption("scenario.paths", dir)

	var stdout bytes.Buffer
	require.NoError(t, NewListCommand(cfg).Execute(nil, &stdout, &bytes.Buffer{}))
	assert.Regexp(t, `(?m)^tiny\s+Tiny\s+2\s+`+regexp.QuoteMeta(dir)+`$`, stdout.String())
	assert.Contains(t, stdout.String(), "react")
}

func TestListRejectsArgs(t *testing.T) {
	t.Parallel()
	var stderr bytes.Buffer
	err := NewListCommand(config.NewConfig()).Execute([]string{"react"}, &bytes.Buffer{}, &stderr)
	assert.ErrorIs(t, err, errUnexpectedArgs)
	assert.Contains(t, stderr.String(), "unexpected arguments")
}
