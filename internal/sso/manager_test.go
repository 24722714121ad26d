package sso

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostInstall creates a fake host install dir with the API binary and, optionally, the companion file
func hostInstall(t *testing.T, companion string) string {
	t.Helper()
	dir := t.TempDir()
	apiPath := filepath.Join(dir, "HostAPI.dll")
	require.NoError(t, os.WriteFile(apiPath, []byte("bin"), 0o644))
	if companion != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, CompanionFileName), []byte(companion), 0o644))
	}
	return apiPath
}

func TestEnsureLoaded_LoadsOnce(t *testing.T) {
	apiPath := hostInstall(t, "{}")

	loads := 0
	var seenPath string
	m := NewManager(apiPath, LoaderFunc(func(path string) (*Handle, error) {
		loads++
		seenPath = path
		return &Handle{Path: path}, nil
	}))

	h1, err := m.EnsureLoaded()
	require.NoError(t, err)
	h2, err := m.EnsureLoaded()
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Same(t, h1, h2)
	assert.Equal(t, filepath.Join(filepath.Dir(apiPath), CompanionFileName), seenPath)
	assert.True(t, m.Loaded())
}

func TestEnsureLoaded_FailureIsNotCached(t *testing.T) {
	apiPath := hostInstall(t, "{}")

	loads := 0
	m := NewManager(apiPath, LoaderFunc(func(path string) (*Handle, error) {
		loads++
		if loads == 1 {
			return nil, errors.New("bad image")
		}
		return &Handle{Path: path}, nil
	}))

	_, err := m.EnsureLoaded()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad image")
	assert.False(t, m.Loaded())

	_, err = m.EnsureLoaded()
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestEnsureLoaded_MissingCompanion(t *testing.T) {
	apiPath := hostInstall(t, "")

	called := false
	m := NewManager(apiPath, LoaderFunc(func(string) (*Handle, error) {
		called = true
		return &Handle{}, nil
	}))

	_, err := m.EnsureLoaded()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, called)
}

func TestEnsureLoaded_NoHostPath(t *testing.T) {
	m := NewManager("", nil)
	_, err := m.EnsureLoaded()
	assert.ErrorIs(t, err, ErrHostAPIPathNotSet)
}

func TestCredentialsLoader(t *testing.T) {
	apiPath := hostInstall(t, `{"client_id":"abc","client_secret":"s","token_url":"https://auth.example/token","scopes":["gbs"]}`)

	h, err := NewManager(apiPath, nil).EnsureLoaded()
	require.NoError(t, err)
	assert.NotNil(t, h.TokenSource)
	assert.Equal(t, CompanionFileName, filepath.Base(h.Path))
}

func TestCredentialsLoader_Invalid(t *testing.T) {
	apiPath := hostInstall(t, `{"client_secret":"s"}`)

	_, err := NewManager(apiPath, nil).EnsureLoaded()
	assert.Error(t, err)

	apiPath = hostInstall(t, `not json`)
	_, err = NewManager(apiPath, nil).EnsureLoaded()
	assert.Error(t, err)
}
