package filesystem

import (
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
)

// AferoFileAccessor implements output.FileAccessor on an afero filesystem
type AferoFileAccessor struct {
	fs afero.Fs
}

// NewAferoFileAccessor creates a file accessor over fs
func NewAferoFileAccessor(fs afero.Fs) *AferoFileAccessor {
	return &AferoFileAccessor{fs: fs}
}

// ReadText reads location as text. Directories and unreadable files are not found.
func (a *AferoFileAccessor) ReadText(location string) (string, bool) {
	if isDir, err := afero.IsDir(a.fs, location); err != nil || isDir {
		return "", false
	}
	data, err := afero.ReadFile(a.fs, location)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Exists reports whether location exists
func (a *AferoFileAccessor) Exists(location string) bool {
	ok, err := afero.Exists(a.fs, location)
	return err == nil && ok
}

// ListChildren lists the entries of dir sorted by name
func (a *AferoFileAccessor) ListChildren(dir string) ([]output.DirEntry, bool) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, false
	}
	entries := make([]output.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, output.DirEntry{
			Name:    info.Name(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		})
	}
	return entries, true
}

var _ output.FileAccessor = (*AferoFileAccessor)(nil)
