// Package archive indexes media files found under a project directory.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/david/studio-desk/internal/models"
)

var ErrDirectoryNotFound = errors.New("directory not found")

// File is a media file discovered by Scan.
type File struct {
	Path string
	Type models.AssetType
}

var extensionTypes = map[string]models.AssetType{
	".jpg":  models.AssetPhoto,
	".jpeg": models.AssetPhoto,
	".png":  models.AssetPhoto,
	".mp3":  models.AssetAudio,
	".wav":  models.AssetAudio,
	".pdf":  models.AssetVerificationDoc,
}

// Classify returns the asset type for a file name, or false when the
// extension is not indexed.
func Classify(name string) (models.AssetType, bool) {
	t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]
	return t, ok
}

// Scan walks root recursively and returns every indexable file in lexical
// order. Unreadable subdirectories are skipped.
func Scan(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Path: root}
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if t, ok := Classify(d.Name()); ok {
			files = append(files, File{Path: path, Type: t})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

// NotFoundError carries the path that could not be scanned.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "Directory not found: " + e.Path
}

func (e *NotFoundError) Unwrap() error {
	return ErrDirectoryNotFound
}
