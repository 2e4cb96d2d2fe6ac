package dto

import "github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"

// RecordStepInput is the input of a manual step recording
type RecordStepInput struct {
	StepID string
	Label  string
}

// HistoryView is the history of the current branch as shown to users
type HistoryView struct {
	BranchName string          `json:"branchName" yaml:"branchName"`
	BranchKey  string          `json:"branchKey" yaml:"branchKey"`
	Available  bool            `json:"available" yaml:"available"`
	Events     []history.Event `json:"events" yaml:"events"`
	// LastUpdated is empty when nothing has been recorded yet
	LastUpdated string `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// RecordStepOutput reports what a recording did
type RecordStepOutput struct {
	Event    history.Event `json:"event" yaml:"event"`
	Appended bool          `json:"appended" yaml:"appended"`
	Log      HistoryView   `json:"history" yaml:"history"`
}

// BranchHistory is one stored branch log in a history listing
type BranchHistory struct {
	BranchKey   string `json:"branchKey" yaml:"branchKey"`
	LastUpdated string `json:"lastUpdated" yaml:"lastUpdated"`
}

// BranchIndexView lists every branch with stored history, most recently updated first
type BranchIndexView struct {
	Available bool            `json:"available" yaml:"available"`
	Branches  []BranchHistory `json:"branches" yaml:"branches"`
}
