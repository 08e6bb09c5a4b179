package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	in := StoredUser{ID: "u-siti", Name: "Siti Rahma", Role: "STUDENT", Avatar: "s.png"}
	require.NoError(t, s.Save(in, "tok-1"))

	out, token, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
	assert.Equal(t, "tok-1", token)
}

func TestStore_LoadAbsent(t *testing.T) {
	s := NewStore(t.TempDir())

	_, _, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LoadCorruptTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{garbage"), 0o600))

	s := NewStore(dir)
	_, _, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(StoredUser{ID: "u1", Name: "N", Role: "ADMIN"}, ""))

	require.NoError(t, s.Clear())
	_, _, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing an absent session is fine
	require.NoError(t, s.Clear())
}

func TestStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "jurnalku")
	s := NewStore(dir)

	require.NoError(t, s.Save(StoredUser{ID: "u1", Name: "N", Role: "ADMIN"}, "t"))
	_, _, ok, err := s.Load()
	require.NoError(t, err)
	assert.True(t, ok)
}
