package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "load")
	assert.Contains(t, names, "validate")
	assert.Contains(t, names, "schema")
}

func TestValidateCmd_ValidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: echo\nversion: 1.0.0\n"), 0o600))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "valid")
	assert.Contains(t, out.String(), "echo")
}

func TestValidateCmd_InvalidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: BAD NAME\nversion: 1.0.0\n"), 0o600))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", path})

	assert.Error(t, cmd.Execute())
}

func TestSchemaCmd(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"schema"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Stevedore Plugin Manifest")
}
