package host

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FSWorldContainer keeps every world as a directory below root.
type FSWorldContainer struct {
	root string
}

func NewFSWorldContainer(root string) (*FSWorldContainer, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating world container %s: %w", root, err)
	}

	return &FSWorldContainer{root: root}, nil
}

func (c *FSWorldContainer) Root() string {
	return c.root
}

func (c *FSWorldContainer) ListDirs() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("listing worlds: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// Generate copies the map template at source into a fresh world directory.
func (c *FSWorldContainer) Generate(dir string, source string) error {
	target, err := c.resolve(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("reading map template: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("map template %s is not a directory", source)
	}

	_, err = os.Stat(target)
	if err == nil {
		return fmt.Errorf("world %s already exists", dir)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking world %s: %w", dir, err)
	}

	err = os.CopyFS(target, os.DirFS(source))
	if err != nil {
		if removeErr := os.RemoveAll(target); removeErr != nil {
			slog.Warn("failed to clean up partial world", "world", dir, "error", removeErr)
		}
		return fmt.Errorf("generating world %s: %w", dir, err)
	}

	return nil
}

func (c *FSWorldContainer) Remove(dir string) error {
	target, err := c.resolve(dir)
	if err != nil {
		return err
	}

	err = os.RemoveAll(target)
	if err != nil {
		return fmt.Errorf("removing world %s: %w", dir, err)
	}
	return nil
}

// resolve keeps world names from escaping the container.
func (c *FSWorldContainer) resolve(dir string) (string, error) {
	if dir == "" || dir == "." || strings.ContainsAny(dir, `/\`) || strings.Contains(dir, "..") {
		return "", fmt.Errorf("invalid world name %q", dir)
	}
	return filepath.Join(c.root, dir), nil
}
