package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Level: hclog.Off})
}

func TestPathLocatorResolvesFromPATH(t *testing.T) {
	loc := NewPathLocator("sh", testLogger())

	path, err := loc.Locate()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
}

func TestPathLocatorResolvesExplicitPath(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "scanner")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	loc := NewPathLocator(binary, testLogger())
	path, err := loc.Locate()
	require.NoError(t, err)
	assert.Equal(t, binary, path)
}

func TestPathLocatorMissingBinary(t *testing.T) {
	loc := NewPathLocator("definitely-not-a-real-scanner-binary", testLogger())

	_, err := loc.Locate()
	assert.Error(t, err)

	_, err = loc.Ensure()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install it")
}
