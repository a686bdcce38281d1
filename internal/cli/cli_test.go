// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/cli"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// run executes identityctl against a SQLite file and returns stdout.
func run(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	command := cli.NewRootCommand()
	command.SetOut(&stdout)
	command.SetErr(&stderr)
	command.SetArgs(append([]string{"--driver", "sqlite", "--sqlite-path", path}, args...))

	err := command.Execute()
	return stdout.String(), err
}

/*
TestCLI_Lifecycle migrates a fresh store, registers identities and looks
them up.
*/
func TestCLI_Lifecycle(t *testing.T) {
	t.Setenv("PASSWORD_HASH_ITERATIONS", "1000")
	t.Setenv("ENVIRONMENT", "test")
	path := filepath.Join(t.TempDir(), "nested", "identity.db")

	out, err := run(t, path, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = run(t, path, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version 1 (dirty: false)")

	out, err = run(t, path, "register", "--email", "a@x.com", "--username", "alice01", "--password", "Abcdef12")
	require.NoError(t, err)

	var registered auth.IdentityView
	require.NoError(t, json.Unmarshal([]byte(out), &registered))
	assert.Equal(t, "alice01", registered.Auth.Username)
	assert.NotContains(t, out, "password_hash")

	out, err = run(t, path, "lookup", "a@x.com")
	require.NoError(t, err)
	var found auth.IdentityView
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	assert.Equal(t, registered.Auth.ID, found.Auth.ID)

	_, err = run(t, path, "register", "--email", "b@x.com", "--username", "alice01", "--password", "Abcdef12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USERNAME_TAKEN")

	_, err = run(t, path, "register", "--email", "b@x.com", "--username", "bob01", "--password", "weak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")

	out, err = run(t, path, "register-oauth", "--provider", "GitHub", "--provider-id", "42", "--email", "g@x.com", "--username", "gina")
	require.NoError(t, err)
	assert.Contains(t, out, `"created": true`)

	out, err = run(t, path, "register-oauth", "--provider", "github", "--provider-id", "42", "--email", "g@x.com", "--username", "gina")
	require.NoError(t, err)
	assert.Contains(t, out, `"created": false`)

	_, err = run(t, path, "lookup", "nobody")
	assert.Error(t, err)
}

/*
TestCLI_Version needs no configuration.
*/
func TestCLI_Version(t *testing.T) {
	var stdout bytes.Buffer
	command := cli.NewRootCommand()
	command.SetOut(&stdout)
	command.SetArgs([]string{"version"})

	require.NoError(t, command.Execute())
	assert.Contains(t, stdout.String(), "identity-api")
}
