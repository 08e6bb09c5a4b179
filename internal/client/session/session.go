// Package session persists the authenticated identity between runs, the
// way a browser keeps it in local storage: a small JSON file, no contact
// with the server.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/widiatmoko/jurnalku/internal/domain/user"
)

// StoredUser is the minimal identity projection kept client-side.
type StoredUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

func FromUser(u user.User) StoredUser {
	return StoredUser{ID: u.ID, Name: u.Name, Role: u.Role, Avatar: u.Avatar}
}

const sessionFile = "session.json"

type fileContents struct {
	User  StoredUser `json:"user"`
	Token string     `json:"token,omitempty"`
}

type Store struct {
	path string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, sessionFile)}
}

// Load returns the persisted identity. ok is false when no session exists.
func (s *Store) Load() (u StoredUser, token string, ok bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StoredUser{}, "", false, nil
		}
		return StoredUser{}, "", false, err
	}

	var c fileContents
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupt session is treated as absent rather than fatal.
		return StoredUser{}, "", false, nil
	}
	if c.User.ID == "" {
		return StoredUser{}, "", false, nil
	}
	return c.User, c.Token, true, nil
}

func (s *Store) Save(u StoredUser, token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(fileContents{User: u, Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
