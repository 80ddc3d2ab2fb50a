package httpbackend

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore keeps the access token between requests.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

type MemoryTokens struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryTokens) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// FileTokens persists the token in a file readable only by the owner. An
// empty token removes the file.
type FileTokens struct {
	Path string

	mu sync.Mutex
}

func (f *FileTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *FileTokens) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == "" {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token+"\n"), 0o600)
}
