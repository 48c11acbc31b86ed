// Package storage persists uploaded resumes. Names are flat; callers never pass paths.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("storage: invalid object name")

type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, name string) error
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return name, nil
}
