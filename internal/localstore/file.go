package localstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"artisanlink/internal/logger"

	"go.uber.org/zap"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileStore keeps one JSON file per key under a root directory.
type FileStore struct {
	dir string
}

// NewFileStore creates root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create local store dir: %w", err)
	}
	return &FileStore{dir: root}, nil
}

// Device returns the store of one guest device. deviceID must be a safe path segment.
func (f *FileStore) Device(deviceID string) (*FileStore, error) {
	if !validName.MatchString(deviceID) {
		return nil, ErrInvalidKey
	}
	return NewFileStore(filepath.Join(f.dir, deviceID))
}

func (f *FileStore) path(key string) (string, error) {
	if !validName.MatchString(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileStore) Get(key string) (string, bool) {
	p, err := f.path(key)
	if err != nil {
		return "", false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.L().Warn("local store read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(b), true
}

// Set writes through a temp file and rename so readers never see a partial blob.
func (f *FileStore) Set(key, value string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("local store write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("local store write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local store write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("local store write %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Remove(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local store remove %s: %w", key, err)
	}
	return nil
}
