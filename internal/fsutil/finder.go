// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files
// ending with one of the specified extensions. It returns a slice of their
// full paths.
func FindFilesByExtension(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension must be given")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasExtension(d.Name(), extensions) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

func hasExtension(name string, extensions []string) bool {
	return slices.ContainsFunc(extensions, func(ext string) bool { return strings.HasSuffix(name, ext) })
}

// Lookup returns the path of the first file named name, with one of the
// extensions appended, found in the directories of searchPath in order. A
// name that already carries one of the extensions is looked up as is.
func Lookup(searchPath []string, name string, extensions ...string) (string, error) {
	candidates := []string{name}
	if !hasExtension(name, extensions) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, dir := range searchPath {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%q not found in search path %v: %w", name, searchPath, fs.ErrNotExist)
}

// ListNames returns the file names, without extension and relative to their
// search directory, of every matching file on the search path. A name found
// in several directories is listed once. Missing directories are skipped.
func ListNames(searchPath []string, extensions ...string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range searchPath {
		files, err := FindFilesByExtension(dir, extensions...)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, file := range files {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return nil, err
			}
			name := strings.TrimSuffix(rel, filepath.Ext(rel))
			name = filepath.ToSlash(name)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}
