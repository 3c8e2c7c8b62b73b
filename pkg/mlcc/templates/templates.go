// Package templates provides template trees for project generation: the
// tree embedded in the binary and user-supplied directories on disk.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
)

//go:embed all:files
var embedded embed.FS

const embeddedRoot = "files"

// Source is a template tree.
type Source interface {
	// Name describes the source for messages.
	Name() string

	// Files returns every regular file as a slash-separated path relative
	// to the tree root, sorted.
	Files() ([]string, error)

	// ReadFile returns the contents of a file named as returned by Files.
	ReadFile(name string) ([]byte, error)
}

type embeddedSource struct {
	fsys fs.FS
}

// Embedded returns the built-in template tree.
func Embedded() Source {
	sub, err := fs.Sub(embedded, embeddedRoot)
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return embeddedSource{fsys: sub}
}

func (s embeddedSource) Name() string { return "built-in templates" }

func (s embeddedSource) Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking embedded templates: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (s embeddedSource) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, name)
}

type dirSource struct {
	root string
}

// Dir returns the template tree rooted at root on disk.
func Dir(root string) (Source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving template dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template dir %s is not a directory", abs)
	}
	return dirSource{root: abs}, nil
}

func (s dirSource) Name() string { return s.root }

func (s dirSource) Files() ([]string, error) {
	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	var (
		mu    sync.Mutex
		files []string
	)
	err := fastwalk.Walk(&conf, s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		mu.Lock()
		files = append(files, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}
	sort.Strings(files)
	return files, nil
}

func (s dirSource) ReadFile(name string) ([]byte, error) {
	clean := path.Clean("/" + name)
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
}

// Open returns the template tree at dir, or the embedded tree when dir
// is empty.
func Open(dir string) (Source, error) {
	if dir == "" {
		return Embedded(), nil
	}
	return Dir(dir)
}
