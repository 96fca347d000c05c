// Package library enumerates the photo library and keeps the navigation
// history of shown images.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoImagesFound reports an empty photo library. It is fatal for the
// current operation only; callers retry after a backoff instead of
// terminating the kiosk.
var ErrNoImagesFound = errors.New("no images found in library")

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Dirs returns the library root plus any sibling directories whose name
// shares the root's name prefix, so a library can span multiple volumes
// ("Pictures", "Pictures2", "Pictures-overflow", ...).
func Dirs(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	parent := filepath.Dir(abs)
	prefix := filepath.Base(abs)

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			dirs = append(dirs, filepath.Join(parent, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Scan lists every eligible image file in the multi-part library, one level
// deep per directory, deduplicated case-insensitively.
func Scan(root string) ([]string, error) {
	dirs, err := Dirs(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			key := strings.ToLower(path)
			if seen[key] {
				continue
			}
			seen[key] = true
			files = append(files, path)
		}
	}
	return files, nil
}
