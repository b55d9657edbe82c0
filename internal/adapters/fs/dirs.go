// Package fs provides filesystem adapters.
package fs

import (
	"github.com/spf13/afero"
)

// DirChecker implements domain.DirectoryChecker over an afero filesystem.
type DirChecker struct {
	fs afero.Fs
}

// NewDirChecker creates a DirChecker backed by the operating system filesystem.
func NewDirChecker() *DirChecker {
	return &DirChecker{fs: afero.NewOsFs()}
}

// NewDirCheckerWithFs creates a DirChecker over the given filesystem.
// This is useful for testing.
func NewDirCheckerWithFs(fs afero.Fs) *DirChecker {
	return &DirChecker{fs: fs}
}

// IsDir reports whether path exists and is a directory.
// Stat failures, including a missing path, report false.
func (c *DirChecker) IsDir(path string) bool {
	ok, err := afero.DirExists(c.fs, path)
	return err == nil && ok
}
