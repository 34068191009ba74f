package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const hashFileName = "hash"

func cleanUpWithHash(dir string, salt ...string) error {
	newHash := hashSalt(salt...)

	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, newHash)

	hashFile := filepath.Join(dir, hashFileName)

	old, err := os.ReadFile(hashFile)
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	if bytes.Equal(old, b) {
		return nil
	}

	fiList, err := os.ReadDir(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	for _, fi := range fiList {
		err = os.RemoveAll(filepath.Join(dir, fi.Name()))
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(os.WriteFile(hashFile, b, 0600))
}

func hashSalt(salt ...string) uint32 {
	h := fnv.New32a()
	for _, s := range salt {
		fmt.Fprint(h, s, "|||")
	}
	return h.Sum32()
}
