package history

import (
	"crypto/rand"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrNoBranchKey is returned when a branch key cannot be built for a request
	ErrNoBranchKey = errors.New("no branch to key workflow history by")

	// ErrHistoryUnavailable is returned when history persistence is disabled
	ErrHistoryUnavailable = errors.New("workflow history storage is not configured")
)

// Source tells whether an event was recorded by a person or inferred from artifacts
type Source string

const (
	SourceSessionLog       Source = "session-log"
	SourceArtifactFallback Source = "artifact-fallback"
)

// Event types
const (
	EventTypeArtifactScan = "artifact-scan"
	EventTypeManual       = "manual"
)

// DuplicateWindow suppresses repeated (type, step, source) events closer than this
const DuplicateWindow = 60 * time.Second

// TimestampLayout is fixed-width so timestamps sort lexicographically
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Event is an immutable entry of a branch's workflow history
type Event struct {
	ID        string `json:"id" yaml:"id"`
	BranchKey string `json:"branchKey" yaml:"branchKey"`
	Type      string `json:"type" yaml:"type"`
	StepID    string `json:"stepId" yaml:"stepId"`
	Label     string `json:"label" yaml:"label"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Source    Source `json:"source" yaml:"source"`
}

// Log is the append-only history of one (workspace root, branch) pair
type Log struct {
	BranchKey   string  `json:"branchKey" yaml:"branchKey"`
	Events      []Event `json:"events" yaml:"events"`
	LastUpdated string  `json:"lastUpdated" yaml:"lastUpdated"`
}

// BuildBranchKey joins workspace root and branch name. Both are required.
func BuildBranchKey(workspaceRoot, branchName string) (string, bool) {
	if workspaceRoot == "" || branchName == "" {
		return "", false
	}
	return workspaceRoot + ":" + branchName, true
}

// FormatTimestamp renders t in the fixed-width UTC layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewEventID generates a monotonic ULID for an event created at t
func NewEventID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewEmptyLog creates a log with no events
func NewEmptyLog(branchKey string, now time.Time) *Log {
	return &Log{
		BranchKey:   branchKey,
		Events:      []Event{},
		LastUpdated: FormatTimestamp(now),
	}
}

// ShouldAppend compares a candidate with the last event of the list.
// Same (type, step, source) within DuplicateWindow is a redundant heartbeat.
// Unparseable timestamps never suppress.
func ShouldAppend(existing []Event, candidate Event) bool {
	if len(existing) == 0 {
		return true
	}
	last := existing[len(existing)-1]
	if last.Type != candidate.Type || last.StepID != candidate.StepID || last.Source != candidate.Source {
		return true
	}

	lastTime, err := time.Parse(time.RFC3339Nano, last.Timestamp)
	if err != nil {
		return true
	}
	nextTime, err := time.Parse(time.RFC3339Nano, candidate.Timestamp)
	if err != nil {
		return true
	}
	return nextTime.Sub(lastTime) > DuplicateWindow
}

// Merge appends the candidates that pass de-duplication, re-sorts events by
// timestamp and stamps LastUpdated. It returns the accepted events.
func (l *Log) Merge(candidates []Event, now time.Time) []Event {
	var accepted []Event
	for _, candidate := range candidates {
		if ShouldAppend(l.Events, candidate) {
			l.Events = append(l.Events, candidate)
			accepted = append(accepted, candidate)
		}
	}

	sort.SliceStable(l.Events, func(i, j int) bool {
		return l.Events[i].Timestamp < l.Events[j].Timestamp
	})
	l.LastUpdated = FormatTimestamp(now)
	return accepted
}

// HasSessionEvents reports whether any event was recorded from a session log
func HasSessionEvents(events []Event) bool {
	for _, e := range events {
		if e.Source == SourceSessionLog {
			return true
		}
	}
	return false
}

// StatusSource picks the status source label for a set of events
func StatusSource(events []Event) Source {
	if HasSessionEvents(events) {
		return SourceSessionLog
	}
	return SourceArtifactFallback
}
