// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"strings"
)

// FindByExtension walks fsys and returns the paths of all files whose name
// ends with the given extension, in lexical walk order. It works over both
// embedded filesystems and os.DirFS roots, which is how schema manifests can
// ship inside the binary yet stay overridable from disk.
func FindByExtension(fsys fs.FS, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
