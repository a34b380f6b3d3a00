package shell

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

const (
	// RootDir is the root marker of the sandbox.
	RootDir = "~"
	// HomeDir is the directory every session starts in.
	HomeDir = "~/scorchOS"
)

//go:embed fs.toml
var defaultTable []byte

// Filesystem maps a directory to its ordered children. It is read-only once
// built; sessions share one instance.
type Filesystem map[string][]string

type fsFile struct {
	Dir []struct {
		Path     string   `toml:"path"`
		Children []string `toml:"children"`
	} `toml:"dir"`
}

// LoadFilesystem parses a TOML directory table.
func LoadFilesystem(data []byte) (Filesystem, error) {
	var f fsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse filesystem table: %w", err)
	}

	fs := make(Filesystem, len(f.Dir))
	for _, d := range f.Dir {
		if d.Path == "" {
			return nil, fmt.Errorf("parse filesystem table: directory without path")
		}
		if _, dup := fs[d.Path]; dup {
			return nil, fmt.Errorf("parse filesystem table: duplicate directory %q", d.Path)
		}
		fs[d.Path] = append([]string(nil), d.Children...)
	}
	return fs, nil
}

var loadDefault = sync.OnceValues(func() (Filesystem, error) {
	return LoadFilesystem(defaultTable)
})

// DefaultFilesystem returns the embedded directory table.
func DefaultFilesystem() Filesystem {
	fs, err := loadDefault()
	if err != nil {
		// the embedded table is part of the binary; a parse failure is a build defect
		panic(err)
	}
	return fs
}

// Children returns the listed children of dir, or nil when dir has none registered.
func (fs Filesystem) Children(dir string) []string {
	return fs[dir]
}

// Contains reports whether name is listed directly under dir.
func (fs Filesystem) Contains(dir, name string) bool {
	for _, child := range fs[dir] {
		if child == name {
			return true
		}
	}
	return false
}

// IsDir reports whether dir is a navigable directory.
func (fs Filesystem) IsDir(dir string) bool {
	if dir == RootDir {
		return true
	}
	_, ok := fs[dir]
	return ok
}

// IsFileName reports whether a listed name is styled as a file.
func IsFileName(name string) bool {
	return strings.Contains(name, ".")
}
