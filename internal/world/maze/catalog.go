package maze

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry represents a maze file discovered in a maze directory
type Entry struct {
	Name string // Display name (file name without extension)
	Path string // Path to the maze file
}

// Scan lists the maze files (.json, .yaml, .yml) in dir, sorted by name.
// Files are not parsed; Load reports broken content when a maze is picked.
func Scan(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		// Skip directories and hidden files
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		entries = append(entries, Entry{
			Name: strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())),
			Path: filepath.Join(dir, f.Name()),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Resolve turns ref into a maze file path. A ref naming an existing file is
// used as is; otherwise it is looked up by name in dir.
func Resolve(dir, ref string) (string, error) {
	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		return ref, nil
	}

	entries, err := Scan(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, ref) {
			return e.Path, nil
		}
	}
	return "", fmt.Errorf("no maze named %q in %s", ref, dir)
}
