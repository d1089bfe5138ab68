package cli

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

func TestCommandGrammar(t *testing.T) {
	var commands struct {
		Commands
	}

	parser, err := kong.New(&commands,
		kong.Name("ledgerbridge"),
		kong.Bind(&commands.Globals),
	)
	assert.NoError(t, err)
	assert.NotZero(t, parser)
}

func TestCommandError(t *testing.T) {
	err := NewCommandError(2)
	assert.Equal(t, 2, err.ExitCode())
	assert.Equal(t, "command failed", err.Error())
}
