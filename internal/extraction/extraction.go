// Package extraction unpacks uploaded render bundles so each contained
// composite can be validated and registered individually.
package extraction

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// ExtractBundle extracts a render bundle (zip/tar/…) to a temporary
// directory and returns the extracted file paths plus the directory, which
// the caller must remove. System and hidden files are skipped during the
// walk.
func ExtractBundle(bundlePath string) ([]string, string, error) {
	destDir, err := os.MkdirTemp("", "bundle-*")
	if err != nil {
		return nil, "", err
	}

	ctx := context.Background()
	fsys, err := archives.FileSystem(ctx, bundlePath, nil)
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || ShouldIgnoreFile(filepath.Base(path)) {
			return nil
		}
		reader, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer reader.Close()

		destPath := filepath.Join(destDir, path)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer outFile.Close()

		if _, err := io.Copy(outFile, reader); err != nil {
			return err
		}

		files = append(files, destPath)
		return nil
	})
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	return files, destDir, nil
}

// ShouldIgnoreFile reports whether a bundle member is a system artifact
// rather than a render (macOS resource forks, hidden files, Thumbs.db).
func ShouldIgnoreFile(filename string) bool {
	if strings.HasPrefix(filename, "._") {
		return true
	}
	if strings.HasPrefix(filename, ".") {
		return true
	}
	if filename == ".DS_Store" || strings.ToLower(filename) == "thumbs.db" {
		return true
	}
	if filename == "" || strings.HasSuffix(filename, "/") {
		return true
	}
	return false
}
