// SPDX-License-Identifier: MIT
package procutil

import (
	"fmt"
	"os"
)

// ScratchFile is a tempfile created for one subprocess invocation (a
// C source's generated bitcode output). Close removes the file; it is
// always safe to call more than once.
type ScratchFile struct {
	Path string
}

// NewScratchFile creates an empty temp file under dir (the OS default
// temp directory when dir is "") named pattern, following the same
// os.CreateTemp-then-defer-remove idiom cache.CacheModule uses for its
// atomic bitcode writes.
func NewScratchFile(dir, pattern string) (*ScratchFile, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("procutil: create scratch file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("procutil: close scratch file: %w", err)
	}
	return &ScratchFile{Path: path}, nil
}

// ReadAndClose reads the scratch file's contents and removes it.
func (s *ScratchFile) ReadAndClose() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	os.Remove(s.Path)
	if err != nil {
		return nil, fmt.Errorf("procutil: read scratch file: %w", err)
	}
	return data, nil
}

// Close removes the scratch file without reading it.
func (s *ScratchFile) Close() error {
	if s == nil || s.Path == "" {
		return nil
	}
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("procutil: remove scratch file: %w", err)
	}
	return nil
}

// ScratchDir creates a fresh temp directory under dir, returning a
// cleanup func the caller should defer.
func ScratchDir(dir, pattern string) (path string, cleanup func(), err error) {
	path, err = os.MkdirTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("procutil: create scratch dir: %w", err)
	}
	return path, func() { os.RemoveAll(path) }, nil
}
