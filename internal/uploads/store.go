// Package uploads stores images uploaded through the admin forms.
//
// Files live under <dir>/images/<entity>/<filename>, where filename is
// server-assigned. Uploads are one-shot: a failed upload leaves nothing
// behind and is never retried by the server.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("only jpg and png images are accepted")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrBadEntityTag    = errors.New("invalid upload entity tag")
)

// entityTagPattern restricts the upload-type tag to simple folder names.
var entityTagPattern = regexp.MustCompile(`^[a-z]{1,32}$`)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store is a disk-backed image store.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the store root if needed.
func NewStore(dir string, maxSizeMB int) (*Store, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = 2
	}
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: int64(maxSizeMB) * 1024 * 1024}, nil
}

// Save writes one uploaded image and returns its server-assigned
// filename. The original name only contributes its extension.
func (s *Store) Save(entity, originalName string, r io.Reader) (string, error) {
	if !entityTagPattern.MatchString(entity) {
		return "", ErrBadEntityTag
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	entityDir := filepath.Join(s.dir, "images", entity)
	if err := os.MkdirAll(entityDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create entity directory: %w", err)
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(entityDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	// Read one byte past the cap to detect oversized input.
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return filename, nil
}

// ImagesRoot returns the directory served at the /images URL prefix.
func (s *Store) ImagesRoot() string {
	return filepath.Join(s.dir, "images")
}

// Path returns the on-disk location of a stored image.
func (s *Store) Path(entity, filename string) string {
	return filepath.Join(s.dir, "images", entity, filepath.Base(filename))
}

// SweepOrphans deletes files under one entity folder that are not in the
// referenced set and are older than the grace period. The grace period
// protects images uploaded for a form that has not been submitted yet.
func (s *Store) SweepOrphans(entity string, referenced map[string]bool, grace time.Duration) (int, error) {
	entityDir := filepath.Join(s.dir, "images", entity)
	entries, err := os.ReadDir(entityDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", entityDir, err)
	}

	cutoff := time.Now().Add(-grace)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(entityDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
