package config

import "time"

// History backends
const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
	HistoryBackendNone   = "none"
)

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (JSON, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Core settings
	Home() string             // Base directory for specstatus (SPECSTATUS_HOME)
	WorkspaceRoots() []string // Workspace roots, the first one is primary

	// History storage
	StorageDir() string     // History storage root, "" disables history
	HistoryBackend() string // "file", "sqlite" or "none"
	SQLiteDriver() string   // database/sql driver name for the sqlite backend

	// Branch provider
	GitBin() string            // git binary
	GitTimeoutSec() int        // Timeout per git invocation in seconds
	GitTimeout() time.Duration // Timeout per git invocation as Duration

	// Watcher
	Debounce() time.Duration    // Quiet period before a re-render
	MinInterval() time.Duration // Minimum spacing between re-renders

	// Output and logging
	StderrLevel() string  // Stderr log level
	OutputFormat() string // "text", "json" or "yaml"

	// Metadata
	ConfigSource() string // Source of configuration: "json" or "default"
	SettingPath() string  // Path to setting.json if loaded from file
}

// AppConfig is the concrete implementation of Config interface.
type AppConfig struct {
	home           string
	workspaceRoots []string

	storageDir     string
	historyBackend string
	sqliteDriver   string

	gitBin        string
	gitTimeoutSec int

	debounceMs    int
	minIntervalMs int

	stderrLevel  string
	outputFormat string

	configSource string
	settingPath  string
}

// Home returns the base directory for specstatus
func (c *AppConfig) Home() string {
	return c.home
}

// WorkspaceRoots returns a copy of the configured workspace roots
func (c *AppConfig) WorkspaceRoots() []string {
	out := make([]string, len(c.workspaceRoots))
	copy(out, c.workspaceRoots)
	return out
}

// StorageDir returns the history storage root
func (c *AppConfig) StorageDir() string {
	return c.storageDir
}

// HistoryBackend returns the history backend name
func (c *AppConfig) HistoryBackend() string {
	return c.historyBackend
}

// SQLiteDriver returns the sqlite driver name
func (c *AppConfig) SQLiteDriver() string {
	return c.sqliteDriver
}

// GitBin returns the git binary path
func (c *AppConfig) GitBin() string {
	return c.gitBin
}

// GitTimeoutSec returns the git timeout in seconds
func (c *AppConfig) GitTimeoutSec() int {
	return c.gitTimeoutSec
}

// GitTimeout returns the git timeout as a Duration
func (c *AppConfig) GitTimeout() time.Duration {
	return time.Duration(c.gitTimeoutSec) * time.Second
}

// Debounce returns the watcher debounce
func (c *AppConfig) Debounce() time.Duration {
	return time.Duration(c.debounceMs) * time.Millisecond
}

// MinInterval returns the watcher minimum interval
func (c *AppConfig) MinInterval() time.Duration {
	return time.Duration(c.minIntervalMs) * time.Millisecond
}

// StderrLevel returns the stderr log level
func (c *AppConfig) StderrLevel() string {
	return c.stderrLevel
}

// OutputFormat returns the presenter format
func (c *AppConfig) OutputFormat() string {
	return c.outputFormat
}

// ConfigSource returns the source of configuration
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// SettingPath returns the path to setting.json if loaded from file
func (c *AppConfig) SettingPath() string {
	return c.settingPath
}

// NewAppConfig creates a new AppConfig with the given values.
// This is typically called by the infrastructure layer after loading and merging configurations.
func NewAppConfig(
	home string, workspaceRoots []string,
	storageDir, historyBackend, sqliteDriver string,
	gitBin string, gitTimeoutSec int,
	debounceMs, minIntervalMs int,
	stderrLevel, outputFormat string,
	configSource, settingPath string,
) *AppConfig {
	roots := make([]string, len(workspaceRoots))
	copy(roots, workspaceRoots)
	return &AppConfig{
		home:           home,
		workspaceRoots: roots,
		storageDir:     storageDir,
		historyBackend: historyBackend,
		sqliteDriver:   sqliteDriver,
		gitBin:         gitBin,
		gitTimeoutSec:  gitTimeoutSec,
		debounceMs:     debounceMs,
		minIntervalMs:  minIntervalMs,
		stderrLevel:    stderrLevel,
		outputFormat:   outputFormat,
		configSource:   configSource,
		settingPath:    settingPath,
	}
}

// Override returns a copy of c with the non-empty values applied.
// CLI flags use it to take precedence over setting.json.
func (c *AppConfig) Override(workspaceRoots []string, storageDir *string, outputFormat, stderrLevel string) *AppConfig {
	out := *c
	out.workspaceRoots = c.WorkspaceRoots()
	if len(workspaceRoots) > 0 {
		out.workspaceRoots = append([]string(nil), workspaceRoots...)
	}
	if storageDir != nil {
		out.storageDir = *storageDir
	}
	if outputFormat != "" {
		out.outputFormat = outputFormat
	}
	if stderrLevel != "" {
		out.stderrLevel = stderrLevel
	}
	return &out
}
