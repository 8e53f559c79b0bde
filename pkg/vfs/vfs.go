// Package vfs is an in-memory source tree. It serves .INCLUDE lookups for
// the assembler without touching the host file system.
package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
)

type FileEntry struct {
	Data     []byte
	Modified time.Time
}

// SourceDisk holds source files keyed by their cleaned path.
type SourceDisk struct {
	Mu    sync.RWMutex
	Files map[string]*FileEntry
}

// NewSourceDisk creates an empty SourceDisk.
func NewSourceDisk() *SourceDisk {
	return &SourceDisk{
		Files: make(map[string]*FileEntry),
	}
}

func normalize(name string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsRune(name, 0) {
		return "", ErrInvalidFilename
	}
	return filepath.Clean(name), nil
}

// Write stores a copy of data under name, replacing any existing file.
func (d *SourceDisk) Write(name string, data []byte) error {
	key, err := normalize(name)
	if err != nil {
		return err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	d.Mu.Lock()
	defer d.Mu.Unlock()
	d.Files[key] = &FileEntry{Data: buf, Modified: time.Now()}
	return nil
}

// WriteString is Write for source text.
func (d *SourceDisk) WriteString(name, text string) error {
	return d.Write(name, []byte(text))
}

// Read returns the contents of name.
func (d *SourceDisk) Read(name string) ([]byte, error) {
	key, err := normalize(name)
	if err != nil {
		return nil, err
	}

	d.Mu.RLock()
	defer d.Mu.RUnlock()
	entry, ok := d.Files[key]
	if !ok {
		return nil, ErrFileNotFound
	}
	return entry.Data, nil
}

// ReadLines returns the lines of name. It satisfies the assembler's
// include reader.
func (d *SourceDisk) ReadLines(name string) ([]string, error) {
	data, err := d.Read(name)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}

// Delete removes name.
func (d *SourceDisk) Delete(name string) error {
	key, err := normalize(name)
	if err != nil {
		return err
	}

	d.Mu.Lock()
	defer d.Mu.Unlock()
	if _, ok := d.Files[key]; !ok {
		return ErrFileNotFound
	}
	delete(d.Files, key)
	return nil
}

// List returns all paths, sorted.
func (d *SourceDisk) List() []string {
	d.Mu.RLock()
	defer d.Mu.RUnlock()

	keys := make([]string, 0, len(d.Files))
	for k := range d.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadFrom copies every regular file under the host directory root into
// the disk. Paths keep the root prefix, so includes resolve the same way
// they would on the host.
func (d *SourceDisk) LoadFrom(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		modified := time.Now()
		if info, err := entry.Info(); err == nil {
			modified = info.ModTime()
		}

		d.Mu.Lock()
		d.Files[filepath.Clean(path)] = &FileEntry{Data: raw, Modified: modified}
		d.Mu.Unlock()
		return nil
	})
}
