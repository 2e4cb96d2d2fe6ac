package app

import "path/filepath"

// File and directory names under the home and storage directories
const (
	SettingFileName  = "setting.json"
	VarDirName       = "var"
	HistoryDirName   = "workflow-history"
	HistoryIndexName = "index.yaml"
	HistoryDBName    = "history.db"
)

// Paths holds all resolved paths of the specstatus layout
type Paths struct {
	Home    string // .specstatus
	Setting string // .specstatus/setting.json
	Var     string // .specstatus/var, the default storage directory

	// Empty when history storage is disabled
	Storage      string // history storage root
	History      string // <storage>/workflow-history
	HistoryIndex string // <storage>/workflow-history/index.yaml
	HistoryDB    string // <storage>/history.db
}

// ResolvePaths returns all paths for a home directory and a storage root.
// An empty storage leaves the history paths empty.
func ResolvePaths(home, storage string) Paths {
	p := Paths{
		Home:    home,
		Setting: filepath.Join(home, SettingFileName),
		Var:     filepath.Join(home, VarDirName),
		Storage: storage,
	}
	if storage == "" {
		return p
	}

	p.History = filepath.Join(storage, HistoryDirName)
	p.HistoryIndex = filepath.Join(p.History, HistoryIndexName)
	p.HistoryDB = filepath.Join(storage, HistoryDBName)
	return p
}
