package fileutil

import (
	"io/fs"
	"path/filepath"

	"golang.org/x/xerrors"
)

// Walk visits every regular file under the specified root directory exactly once.
func Walk(root string, walkFn func(path string, d fs.DirEntry) error) error {
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		} else if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return xerrors.Errorf("file info error: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		if err = walkFn(path, d); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return xerrors.Errorf("file walk error: %w", err)
	}
	return nil
}

// Count counts a number of files under the specified root directory.
func Count(root string) (int, error) {
	var count int
	err := Walk(root, func(_ string, _ fs.DirEntry) error {
		count++
		return nil
	})
	if err != nil {
		return 0, xerrors.Errorf("file count error: %w", err)
	}
	return count, nil
}
