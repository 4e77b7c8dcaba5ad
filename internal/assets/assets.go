// Package assets ships the sample game and installs it into a data folder.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

//go:embed all:sample
var sample embed.FS

// Sample returns the bundled sample files rooted at the data folder level.
func Sample() fs.FS {
	sub, err := fs.Sub(sample, "sample")
	if err != nil {
		panic(err)
	}
	return sub
}

// Install copies every file of src into dataDir. Files that already exist
// are left untouched. It returns the number of files written.
func Install(src fs.FS, dataDir string) (int, error) {
	written := 0
	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := filepath.Join(dataDir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		_, err = os.Stat(target)
		if err == nil {
			slog.Debug("asset exists, skipping", "path", target)
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		err = os.WriteFile(target, data, 0644)
		if err != nil {
			return err
		}

		written++
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("installing sample files: %w", err)
	}

	return written, nil
}
