package cache

import (
	"fmt"
	"hash"
	"hash/fnv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func key(s string) hash.Hash {
	h := fnv.New128a()
	fmt.Fprint(h, s)
	return h
}

func TestStorageSaveLoad(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 0)
	require.NoError(t, err)

	var r entry
	assert.False(t, s.Load(key("a"), &r))

	require.True(t, s.Save(key("a"), &entry{Name: "Alice", Value: 25000}))

	require.True(t, s.Load(key("a"), &r))
	assert.Equal(t, entry{Name: "Alice", Value: 25000}, r)

	assert.False(t, s.Load(key("b"), &r))
}

func TestStorageExpires(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, time.Minute)
	require.NoError(t, err)

	require.True(t, s.Save(key("a"), &entry{Name: "Bob"}))

	_, fsPath := s.path(key("a"))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(fsPath, old, old))

	var r entry
	assert.False(t, s.Load(key("a"), &r))

	_, err = os.Stat(fsPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStorageSkipWhileSaving(t *testing.T) {
	s, err := NewStorage(t.TempDir(), 0)
	require.NoError(t, err)

	require.True(t, s.Save(key("a"), &entry{Name: "Carol"}))

	k, _ := s.path(key("a"))
	require.True(t, s.lock(k))
	defer s.unlock(k)

	var r entry
	assert.False(t, s.Load(key("a"), &r))
	assert.False(t, s.Save(key("a"), &entry{Name: "Dave"}))
}

func TestCleanUpWithHash(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStorage(dir, 0, "en,m,k")
	require.NoError(t, err)
	require.True(t, s.Save(key("a"), &entry{Name: "Alice"}))

	// same salt keeps entries
	s, err = NewStorage(dir, 0, "en,m,k")
	require.NoError(t, err)
	var r entry
	assert.True(t, s.Load(key("a"), &r))

	// new salt drops them
	s, err = NewStorage(dir, 0, "en,M,K")
	require.NoError(t, err)
	assert.False(t, s.Load(key("a"), &r))

	fiList, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, fiList, 1)
	assert.Equal(t, hashFileName, fiList[0].Name())

	_, err = os.Stat(filepath.Join(dir, hashFileName))
	assert.NoError(t, err)
}
