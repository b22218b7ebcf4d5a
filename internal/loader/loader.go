// Package loader handles executable file loading and saving operations.
package loader

import (
	"fmt"
	"io/fs"
	"os"
)

// File is an executable image loaded into memory.
type File struct {
	Path string
	Data []byte
	Mode fs.FileMode
}

// Loader handles loading executable files from disk.
type Loader struct{}

// New creates a new executable loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the complete executable file into memory.
func (l *Loader) Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening file %s: is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	return &File{
		Path: path,
		Data: data,
		Mode: info.Mode().Perm(),
	}, nil
}

// Save writes the image of the file to the given path, keeping the
// permissions of the loaded file.
func (l *Loader) Save(file *File, path string) error {
	mode := file.Mode
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(path, file.Data, mode); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}
