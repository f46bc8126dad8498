// Package uploads stores recipe images on local disk under random
// filenames. The rest of the application only ever sees the resulting
// URL, so the image store can be swapped for a remote blob store without
// touching handlers or services.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/potluckapp/potluck/internal/apperr"
)

// URLPrefix is the public path uploaded images are served from.
const URLPrefix = "/uploads"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore writes uploaded images to a directory.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore creates the upload directory if needed and returns a store.
func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory images are stored in, for static serving.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes the uploaded file under a random filename and returns its
// public URL. Non-image extensions and oversized files are rejected with
// a validation error.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", apperr.New(apperr.KindValidation, "only image files are allowed")
	}
	if fh.Size > s.maxBytes {
		return "", apperr.New(apperr.KindValidation, "image exceeds maximum size of %d bytes", s.maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	// LimitReader guards against a lying Content-Length.
	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1)); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return URLPrefix + "/" + name, nil
}
