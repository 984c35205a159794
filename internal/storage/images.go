// Package storage persists uploaded recipe images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedImageType indicates the payload is not a recognized image.
	ErrUnsupportedImageType = errors.New("unsupported image type")

	// ErrImageTooLarge indicates the payload exceeds the store's size cap.
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

// allowedImageTypes maps sniffed content types to file extensions.
// Filenames are generated, never derived from client input.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const recipeImageDir = "recipe"

// ImageStore writes images beneath a root directory. Paths returned and
// accepted are relative to the root so the root can move between
// environments without rewriting rows.
type ImageStore struct {
	root    string
	maxSize int64
}

// NewImageStore creates an ImageStore rooted at dir.
func NewImageStore(dir string, maxSize int64) *ImageStore {
	return &ImageStore{root: dir, maxSize: maxSize}
}

// Save sniffs the payload's content type, rejects non-images, and writes
// the file under a collision-resistant generated name. Returns the path
// relative to the store root.
func (s *ImageStore) Save(r io.Reader) (string, error) {
	limited := io.LimitReader(r, s.maxSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read image payload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w (%d byte limit)", ErrImageTooLarge, s.maxSize)
	}
	if len(data) == 0 {
		return "", ErrUnsupportedImageType
	}

	ext, ok := allowedImageTypes[http.DetectContentType(data)]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	relPath := filepath.Join(recipeImageDir, uuid.New().String()+ext)
	fullPath := filepath.Join(s.root, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return relPath, nil
}

// Remove deletes a previously saved image. A missing file is not an error;
// the reference may already have been cleaned up.
func (s *ImageStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// URLPath returns the public path an image is served under.
func (s *ImageStore) URLPath(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/media/" + filepath.ToSlash(relPath)
}

// Root returns the store's root directory.
func (s *ImageStore) Root() string {
	return s.root
}
