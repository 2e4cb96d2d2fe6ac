package repository

import (
	"context"

	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
)

// HistoryRepository persists per-branch workflow history.
// Implementations never fail the caller for missing or corrupt data.
type HistoryRepository interface {
	// Read returns the stored log for branchKey.
	// A missing, unreadable, or malformed record yields (nil, nil).
	Read(ctx context.Context, branchKey string) (*history.Log, error)

	// Append merges events into the branch log and returns the persisted log.
	// When persistence is disabled it returns (nil, nil).
	Append(ctx context.Context, branchKey string, events []history.Event) (*history.Log, error)

	// BranchKeys maps every stored branch key to its lastUpdated timestamp.
	// An unreadable index yields an empty map.
	BranchKeys(ctx context.Context) (map[string]string, error)

	// Available reports whether the repository persists anything
	Available() bool
}
