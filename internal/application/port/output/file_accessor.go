package output

import "time"

// DirEntry is one child of a listed directory
type DirEntry struct {
	Name    string
	IsDir   bool
	ModTime time.Time
}

// FileAccessor is the read-only filesystem view the scanners work against.
// Failures are expressed as absence, never as errors.
type FileAccessor interface {
	// ReadText reads a UTF-8 file. ok is false when it cannot be read.
	ReadText(location string) (text string, ok bool)

	// Exists reports whether a file or directory exists at location
	Exists(location string) bool

	// ListChildren lists the direct children of dir. ok is false when dir cannot be listed.
	ListChildren(dir string) (entries []DirEntry, ok bool)
}
