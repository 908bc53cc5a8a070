package ingestion

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

var documentExts = []string{".pdf", ".txt", ".md", ".png", ".jpg", ".jpeg"}

// DiscoverDocuments returns the files under root that Extract understands,
// in walk (lexical) order. Hidden directories are skipped.
func DiscoverDocuments(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(documentExts, strings.ToLower(filepath.Ext(path))) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
