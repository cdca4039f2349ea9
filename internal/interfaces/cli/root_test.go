package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "tag")
	assert.Contains(t, names, "serve")
}

func TestRootCommandGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestTagCommandFlags(t *testing.T) {
	cmd := newTagCommand(&runtime{})

	for _, name := range []string{"input", "output", "gold", "use-normalization"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
