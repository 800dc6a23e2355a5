package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"flyerhub/internal/client"
)

// FileSessionStore persists the session as a YAML file.
type FileSessionStore struct {
	Path string
}

var _ client.SessionPersister = (*FileSessionStore)(nil)

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".flyerctl-session.yaml"
	}
	return filepath.Join(dir, "flyerctl", "session.yaml")
}

func (s *FileSessionStore) Load() (*client.State, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state client.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return &state, nil
}

func (s *FileSessionStore) Save(state *client.State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
