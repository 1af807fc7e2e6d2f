package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// TokenKey is the fixed key the bearer token is stored under.
const TokenKey = "token"

// FileTokenStore keeps the bearer token in a small JSON file so it
// survives between console runs.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.read()
	if err != nil {
		return "", false
	}
	t := vals[TokenKey]
	return t, t != ""
}

func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.read()
	if err != nil {
		vals = map[string]string{}
	}
	vals[TokenKey] = token
	return s.write(vals)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	delete(vals, TokenKey)
	return s.write(vals)
}

func (s *FileTokenStore) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var vals map[string]string
	if err := json.Unmarshal(b, &vals); err != nil {
		return nil, fmt.Errorf("credential file %s: %w", s.path, err)
	}
	if vals == nil {
		// a file holding null
		vals = map[string]string{}
	}
	return vals, nil
}

func (s *FileTokenStore) write(vals map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
