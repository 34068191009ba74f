package cache

import (
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Storage keeps json files under dir, one per hash key.
// expires <= 0 keeps entries forever.
type Storage struct {
	dir     string
	expires time.Duration

	savingLock sync.RWMutex
	saving     map[string]struct{}
}

// NewStorage prepares dir. When the salts differ from the ones the directory was
// created with, every cached entry is dropped.
func NewStorage(dir string, expires time.Duration, salt ...string) (*Storage, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = cleanUpWithHash(dir, salt...)
	if err != nil {
		return nil, err
	}

	return &Storage{
		dir:     dir,
		expires: expires,
		saving:  make(map[string]struct{}, 32),
	}, nil
}

func (s *Storage) lock(key string) bool {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	_, ok := s.saving[key]
	if !ok {
		s.saving[key] = struct{}{}
	}
	return !ok
}
func (s *Storage) unlock(key string) {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	delete(s.saving, key)
}
func (s *Storage) checkSkip(key string) bool {
	s.savingLock.RLock()
	defer s.savingLock.RUnlock()

	_, ok := s.saving[key]
	return ok
}

func (s *Storage) path(h hash.Hash) (key string, fsPath string) {
	key = hex.EncodeToString(h.Sum(nil))
	return key, filepath.Join(s.dir, fmt.Sprintf("%s.json", key))
}

func (s *Storage) Save(h hash.Hash, r interface{}) bool {
	key, fsPath := s.path(h)

	if !s.lock(key) {
		return false
	}
	defer s.unlock(key)

	fs, err := os.Create(fsPath)
	if err != nil {
		sentry.CaptureException(err)
		return false
	}
	defer fs.Close()

	err = jsoniter.NewEncoder(fs).Encode(r)
	if err != nil {
		sentry.CaptureException(err)
		fs.Close()
		os.Remove(fsPath)
		return false
	}

	return true
}

func (s *Storage) Load(h hash.Hash, r interface{}) bool {
	key, fsPath := s.path(h)

	if s.checkSkip(key) {
		return false
	}

	fs, err := os.Open(fsPath)
	if err != nil {
		return false
	}
	defer fs.Close()

	if s.expires > 0 {
		fi, err := fs.Stat()
		if err != nil {
			return false
		}
		if time.Since(fi.ModTime()) > s.expires {
			fs.Close()
			os.Remove(fsPath)
			return false
		}
	}

	err = jsoniter.NewDecoder(fs).Decode(r)
	if err != nil {
		sentry.CaptureException(err)
		return false
	}
	return true
}
