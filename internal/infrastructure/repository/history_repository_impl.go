package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/repository"
	"github.com/YoshitsuguKoike/specstatus/internal/infra/persistence/file"
)

// FileHistoryRepository implements repository.HistoryRepository with one JSON
// document per branch key under <storageRoot>/workflow-history, plus a YAML
// index of branch keys and their last update.
type FileHistoryRepository struct {
	fs          afero.Fs
	storageRoot string
	logger      app.Logger
	now         func() time.Time
}

// NewFileHistoryRepository creates a file-backed history repository.
// An empty storageRoot disables persistence.
func NewFileHistoryRepository(fs afero.Fs, storageRoot string, logger app.Logger, now func() time.Time) *FileHistoryRepository {
	if now == nil {
		now = time.Now
	}
	return &FileHistoryRepository{
		fs:          fs,
		storageRoot: storageRoot,
		logger:      logger,
		now:         now,
	}
}

// SanitizeKey turns a branch key into a portable file name
func SanitizeKey(branchKey string) string {
	return strings.ReplaceAll(url.QueryEscape(branchKey), "%", "_")
}

func (r *FileHistoryRepository) dir() string {
	return app.ResolvePaths("", r.storageRoot).History
}

// PathFor returns the document path of branchKey
func (r *FileHistoryRepository) PathFor(branchKey string) string {
	return filepath.Join(r.dir(), SanitizeKey(branchKey)+".json")
}

// Available reports whether a storage root is configured
func (r *FileHistoryRepository) Available() bool {
	return r.storageRoot != ""
}

type storedLog struct {
	BranchKey   string          `json:"branchKey"`
	Events      json.RawMessage `json:"events"`
	LastUpdated string          `json:"lastUpdated"`
}

// Read loads the log of branchKey. Missing, corrupt or mismatched documents read as absent.
func (r *FileHistoryRepository) Read(ctx context.Context, branchKey string) (*history.Log, error) {
	if !r.Available() {
		return nil, nil
	}

	path := r.PathFor(branchKey)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, nil
	}

	var stored storedLog
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Warn("ignoring malformed workflow history %s: %v", path, err)
		return nil, nil
	}
	if stored.BranchKey != branchKey {
		r.logger.Warn("ignoring workflow history %s: branch key %q does not match %q", path, stored.BranchKey, branchKey)
		return nil, nil
	}
	raw := bytes.TrimSpace(stored.Events)
	if len(raw) == 0 || raw[0] != '[' {
		r.logger.Warn("ignoring workflow history %s: events is not a list", path)
		return nil, nil
	}

	var events []history.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		r.logger.Warn("ignoring malformed workflow history events in %s: %v", path, err)
		return nil, nil
	}

	return &history.Log{
		BranchKey:   stored.BranchKey,
		Events:      events,
		LastUpdated: stored.LastUpdated,
	}, nil
}

// Append merges events into the log of branchKey and persists it
func (r *FileHistoryRepository) Append(ctx context.Context, branchKey string, events []history.Event) (*history.Log, error) {
	if !r.Available() {
		return nil, nil
	}

	now := r.now()
	log, _ := r.Read(ctx, branchKey)
	if log == nil {
		log = history.NewEmptyLog(branchKey, now)
	}
	log.Merge(events, now)

	if err := file.WriteJSONAtomic(r.fs, r.PathFor(branchKey), log); err != nil {
		return nil, fmt.Errorf("failed to persist workflow history: %w", err)
	}
	if err := r.updateIndex(branchKey, log.LastUpdated); err != nil {
		r.logger.Warn("failed to update workflow history index: %v", err)
	}
	return log, nil
}

// Index returns branch key to lastUpdated for every persisted log
func (r *FileHistoryRepository) Index() (map[string]string, error) {
	index := map[string]string{}
	if !r.Available() {
		return index, nil
	}
	data, err := afero.ReadFile(r.fs, app.ResolvePaths("", r.storageRoot).HistoryIndex)
	if err != nil {
		return index, nil
	}
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse workflow history index: %w", err)
	}
	if index == nil {
		index = map[string]string{}
	}
	return index, nil
}

// BranchKeys returns the index. A corrupt index is logged and reported as empty.
func (r *FileHistoryRepository) BranchKeys(ctx context.Context) (map[string]string, error) {
	index, err := r.Index()
	if err != nil {
		r.logger.Warn("%v", err)
		return map[string]string{}, nil
	}
	return index, nil
}

func (r *FileHistoryRepository) updateIndex(branchKey, lastUpdated string) error {
	index, err := r.Index()
	if err != nil {
		// A corrupt index is rebuilt from this entry onwards
		index = map[string]string{}
	}
	index[branchKey] = lastUpdated
	return file.WriteYAMLAtomic(r.fs, app.ResolvePaths("", r.storageRoot).HistoryIndex, index)
}

// NoopHistoryRepository is used when history persistence is disabled
type NoopHistoryRepository struct{}

// NewNoopHistoryRepository creates a repository that stores nothing
func NewNoopHistoryRepository() *NoopHistoryRepository {
	return &NoopHistoryRepository{}
}

func (NoopHistoryRepository) Read(ctx context.Context, branchKey string) (*history.Log, error) {
	return nil, nil
}

func (NoopHistoryRepository) Append(ctx context.Context, branchKey string, events []history.Event) (*history.Log, error) {
	return nil, nil
}

func (NoopHistoryRepository) BranchKeys(ctx context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (NoopHistoryRepository) Available() bool {
	return false
}

var (
	_ repository.HistoryRepository = (*FileHistoryRepository)(nil)
	_ repository.HistoryRepository = NoopHistoryRepository{}
)
