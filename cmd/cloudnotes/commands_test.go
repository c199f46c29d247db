package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnotes/cloudnotes/internal/identity"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "cloudnotes "))
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("CLOUDNOTES_JWT_SECRET", "cli-secret")
	t.Setenv("CLOUDNOTES_JWT_ISSUER", "cli")
	t.Setenv("CLOUDNOTES_STORE", "memory")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--user", "alice"})

	require.NoError(t, root.Execute())
	owner, err := identity.NewVerifier("cli-secret", "cli").Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}

func TestTokenCommandRequiresUser(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token"})

	assert.Error(t, root.Execute())
}
