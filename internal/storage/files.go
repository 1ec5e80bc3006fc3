package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Image upload categories; each maps to a subdirectory of the upload root.
const (
	CategoryRestaurants = "restaurants"
	CategoryMenuItems   = "menu-items"
)

// FileStore keeps uploaded images on the local filesystem under
// <root>/<category>/<uuid><ext> and hands back the URL path they are served
// from.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	for _, category := range []string{CategoryRestaurants, CategoryMenuItems} {
		if err := os.MkdirAll(filepath.Join(root, category), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Root() string {
	return s.root
}

// Store writes the file under a fresh random name, keeping only the original
// extension.
func (s *FileStore) Store(category, originalName string, src io.Reader) (string, error) {
	if category != CategoryRestaurants && category != CategoryMenuItems {
		return "", fmt.Errorf("unknown upload category %q", category)
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.root, category, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return "/uploads/" + category + "/" + filename, nil
}

// Delete removes a previously stored file by its URL path. Paths that resolve
// outside the upload root are rejected.
func (s *FileStore) Delete(fileURL string) error {
	rel := strings.TrimPrefix(strings.TrimPrefix(fileURL, "/uploads/"), "/")
	if rel == "" {
		return nil
	}

	path := filepath.Join(s.root, filepath.Clean(rel))
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absPath, absRoot+string(os.PathSeparator)) {
		return fmt.Errorf("invalid file path %q", fileURL)
	}

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
