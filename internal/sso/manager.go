// Package sso loads the single-sign-on capability that ships next to the host
// application's main API binary and keeps it for the lifetime of the process.
package sso

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// CompanionFileName is the conventional name of the SSO companion file. It is
// looked up in the same directory as the host's main API binary.
const CompanionFileName = "ssonet.json"

var ErrHostAPIPathNotSet = errors.New("host API path is not set")

// Handle is the loaded SSO capability
type Handle struct {
	Path        string
	TokenSource oauth2.TokenSource
}

// Loader loads the companion file found at path
type Loader interface {
	Load(path string) (*Handle, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(path string) (*Handle, error)

func (f LoaderFunc) Load(path string) (*Handle, error) { return f(path) }

// Manager caches the SSO handle
type Manager struct {
	mu          sync.Mutex
	hostAPIPath string
	loader      Loader
	handle      *Handle
}

// NewManager creates a manager that resolves the companion file next to hostAPIPath
func NewManager(hostAPIPath string, loader Loader) *Manager {
	if loader == nil {
		loader = CredentialsLoader{}
	}
	return &Manager{hostAPIPath: hostAPIPath, loader: loader}
}

// EnsureLoaded returns the cached handle, loading it on first use.
// A failed load is not cached; the error goes straight back to the caller.
func (m *Manager) EnsureLoaded() (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return m.handle, nil
	}

	path, err := m.companionPath()
	if err != nil {
		return nil, err
	}

	h, err := m.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load sso companion %s: %w", path, err)
	}
	m.handle = h
	return h, nil
}

// Loaded reports whether the handle is already cached
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

func (m *Manager) companionPath() (string, error) {
	if m.hostAPIPath == "" {
		return "", ErrHostAPIPathNotSet
	}
	dir := filepath.Dir(m.hostAPIPath)
	path := filepath.Join(dir, CompanionFileName)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("locate sso companion: %w", err)
	}
	return path, nil
}

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, creating it on first call.
// hostAPIPath is only used by the call that creates it.
func Default(hostAPIPath string) *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = NewManager(hostAPIPath, nil)
	}
	return defaultManager
}
