package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/app/config"
	"github.com/YoshitsuguKoike/specstatus/internal/infra/persistence/file"
)

// HomeEnv overrides the default home directory
const HomeEnv = "SPECSTATUS_HOME"

// DefaultHome is the home directory used when HomeEnv is unset
const DefaultHome = ".specstatus"

// SettingFile is the settings file name inside the home directory
const SettingFile = app.SettingFileName

// RawSettings represents the structure of setting.json file.
// JSON tags are used for marshaling/unmarshaling.
type RawSettings struct {
	// Core settings
	Home           *string  `json:"home"`
	WorkspaceRoots []string `json:"workspace_roots"`

	// History storage
	StorageDir     *string `json:"storage_dir"`
	HistoryBackend *string `json:"history_backend"`
	SQLiteDriver   *string `json:"sqlite_driver"`

	// Branch provider
	GitBin        *string `json:"git_bin"`
	GitTimeoutSec *int    `json:"git_timeout_sec"`

	// Watcher
	DebounceMs    *int `json:"debounce_ms"`
	MinIntervalMs *int `json:"min_interval_ms"`

	// Output and logging
	StderrLevel  *string `json:"stderr_level"`
	OutputFormat *string `json:"output_format"`
}

// ResolveHome returns $SPECSTATUS_HOME or DefaultHome
func ResolveHome() string {
	if v := strings.TrimSpace(os.Getenv(HomeEnv)); v != "" {
		return v
	}
	return DefaultHome
}

// LoadSettings loads configuration from <home>/setting.json.
// Priority: setting.json > defaults
func LoadSettings(fs afero.Fs, home string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	jsonPath := app.ResolvePaths(home, "").Setting
	if data, err := afero.ReadFile(fs, jsonPath); err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		configSource = "json"
		settingPath = jsonPath
	}

	if settings.Home == nil {
		settings.Home = &home
	}
	applyDefaults(settings)

	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", jsonPath, err)
	}

	return buildAppConfig(settings, configSource, settingPath), nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings) {
	if settings.Home == nil {
		v := DefaultHome
		settings.Home = &v
	}
	if len(settings.WorkspaceRoots) == 0 {
		settings.WorkspaceRoots = []string{"."}
	}

	// History storage
	if settings.StorageDir == nil {
		v := app.ResolvePaths(*settings.Home, "").Var
		settings.StorageDir = &v
	}
	if settings.HistoryBackend == nil {
		v := config.HistoryBackendFile
		settings.HistoryBackend = &v
	}
	if settings.SQLiteDriver == nil {
		v := "sqlite3" // mattn/go-sqlite3
		settings.SQLiteDriver = &v
	}

	// Branch provider
	if settings.GitBin == nil {
		v := "git"
		settings.GitBin = &v
	}
	if settings.GitTimeoutSec == nil {
		v := 5
		settings.GitTimeoutSec = &v
	}

	// Watcher
	if settings.DebounceMs == nil {
		v := 300
		settings.DebounceMs = &v
	}
	if settings.MinIntervalMs == nil {
		v := 250
		settings.MinIntervalMs = &v
	}

	// Output and logging
	if settings.StderrLevel == nil {
		v := "warn" // Default to WARN level
		settings.StderrLevel = &v
	}
	if settings.OutputFormat == nil {
		v := "text"
		settings.OutputFormat = &v
	}
}

func validate(settings *RawSettings) error {
	switch *settings.HistoryBackend {
	case config.HistoryBackendFile, config.HistoryBackendSQLite, config.HistoryBackendNone:
	default:
		return fmt.Errorf("history_backend %q: want file, sqlite or none", *settings.HistoryBackend)
	}
	switch *settings.SQLiteDriver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("sqlite_driver %q: want sqlite3 or sqlite", *settings.SQLiteDriver)
	}
	switch *settings.OutputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output_format %q: want text, json or yaml", *settings.OutputFormat)
	}
	if *settings.GitTimeoutSec <= 0 {
		return fmt.Errorf("git_timeout_sec must be positive, got %d", *settings.GitTimeoutSec)
	}
	if *settings.DebounceMs < 0 || *settings.MinIntervalMs < 0 {
		return fmt.Errorf("debounce_ms and min_interval_ms must not be negative")
	}
	return nil
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(settings *RawSettings, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(
		*settings.Home,
		settings.WorkspaceRoots,
		*settings.StorageDir,
		*settings.HistoryBackend,
		*settings.SQLiteDriver,
		*settings.GitBin,
		*settings.GitTimeoutSec,
		*settings.DebounceMs,
		*settings.MinIntervalMs,
		*settings.StderrLevel,
		*settings.OutputFormat,
		configSource,
		settingPath,
	)
}

// CreateDefaultSettings creates a default setting.json content for home
func CreateDefaultSettings(home string) []byte {
	settings := &RawSettings{Home: &home}
	applyDefaults(settings)

	data, _ := json.MarshalIndent(settings, "", "  ")
	return append(data, '\n')
}

// ErrSettingsExist is returned by WriteDefaultSettings when setting.json is already present
var ErrSettingsExist = errors.New("setting.json already exists")

// WriteDefaultSettings writes <home>/setting.json with every key at its default.
// An existing file is only replaced when force is set.
func WriteDefaultSettings(fs afero.Fs, home string, force bool) (string, error) {
	path := app.ResolvePaths(home, "").Setting
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if exists && !force {
		return path, fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrSettingsExist)
	}
	if err := file.WriteFileAtomic(fs, path, CreateDefaultSettings(home), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// DefaultConfig returns the configuration used when no setting.json applies
func DefaultConfig(home string) *config.AppConfig {
	settings := &RawSettings{Home: &home}
	applyDefaults(settings)
	return buildAppConfig(settings, "default", "")
}
