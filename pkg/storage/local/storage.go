// Package local persists uploaded images on the local filesystem and
// serves them back under a public URL prefix.
package local

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sijangmap/marketmap-backend/pkg/config"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Storage writes uploads under a base directory and maps them to URLs.
type Storage struct {
	dir        string
	publicBase string
	maxBytes   int64
}

// New prepares the upload directory and returns a storage handle.
func New(cfg config.UploadConfig) (*Storage, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	maxBytes := int64(cfg.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	return &Storage{
		dir:        cfg.Dir,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		maxBytes:   maxBytes,
	}, nil
}

// MaxBytes is the upper bound for a single uploaded file.
func (s *Storage) MaxBytes() int64 {
	return s.maxBytes
}

// Save persists one multipart file and returns its public URL path.
func (s *Storage) Save(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", fmt.Errorf("file header cannot be nil")
	}
	if header.Size > s.maxBytes {
		return "", fmt.Errorf("file %q exceeds the %d byte upload limit", header.Filename, s.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes)); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return path.Join(s.publicBase, name), nil
}

// Remove deletes the stored file behind a public URL path. Unknown
// paths are ignored so image cleanup stays idempotent.
func (s *Storage) Remove(publicURL string) error {
	name := path.Base(publicURL)
	if name == "" || name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

// Dir is the filesystem directory served under the public base path.
func (s *Storage) Dir() string {
	return s.dir
}

// PublicBase is the URL prefix images are served from.
func (s *Storage) PublicBase() string {
	return s.publicBase
}
