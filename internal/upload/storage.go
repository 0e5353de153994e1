package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/webiot/signage-admin-core/pkg/utilities"
)

// MaxPhotoBytes caps profile photo uploads.
const MaxPhotoBytes = 10 << 20

// ErrUnsupportedType is returned for files that are not images.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Storage writes uploaded files into a flat directory served statically.
type Storage struct {
	dir string
}

// NewStorage creates the upload directory if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory served at /uploads/.
func (s *Storage) Dir() string { return s.dir }

// SavePhoto streams the uploaded file to disk under a KSUID name, keeping the
// original extension. The write goes to a temp file first and is renamed into
// place so a crash mid-write never leaves a half-written photo at the final
// name.
func (s *Storage) SavePhoto(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	name := utilities.NewKSUID() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, io.LimitReader(src, MaxPhotoBytes)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename upload: %w", err)
	}
	return name, nil
}

// Remove deletes a previously stored file. Callers invoke this only after a
// replacement is durably in place; a missing file is not an error.
func (s *Storage) Remove(name string) error {
	if name == "" {
		return nil
	}
	// reject path traversal in stored names
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid stored name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
