package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"profile-service/internal/core"
)

// LocalStorage keeps photos in a directory served read-only under urlPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Save creates the file exclusively; an existing name is a collision, not an overwrite.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStorage, err)
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: invalid file name %q", core.ErrStorage, name)
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: file %s already exists", core.ErrStorage, name)
		}
		return "", fmt.Errorf("%w: %v", core.ErrStorage, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", core.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", core.ErrStorage, err)
	}

	return s.urlPrefix + "/" + name, nil
}

// Delete removes the file a URL points at. A missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorage, err)
	}

	name, ok := s.nameFromURL(url)
	if !ok {
		return fmt.Errorf("%w: url %q is outside %s", core.ErrStorage, url, s.urlPrefix)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", core.ErrStorage, err)
	}
	return nil
}

// Exists reports whether the file behind url is present.
func (s *LocalStorage) Exists(url string) bool {
	name, ok := s.nameFromURL(url)
	if !ok {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

func (s *LocalStorage) nameFromURL(url string) (string, bool) {
	dir, name := path.Split(url)
	if strings.TrimSuffix(dir, "/") != s.urlPrefix || !validName(name) {
		return "", false
	}
	return name, true
}

// validName rejects anything that could escape the upload directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
