package dto

import (
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

// NotInitializedMessage is reported when the primary root has no .specify directory
const NotInitializedMessage = "spec-kit not initialized"

// InitializationState tells whether the workspace has been set up for spec-kit
type InitializationState struct {
	Initialized bool   `json:"initialized" yaml:"initialized"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
}

// StatusSnapshot is the complete derived status handed to presenters
type StatusSnapshot struct {
	BranchContext       branch.Context           `json:"branchContext" yaml:"branchContext"`
	Artifacts           []artifact.Artifact      `json:"artifacts" yaml:"artifacts"`
	Workflow            []workflow.Step          `json:"workflow" yaml:"workflow"`
	StatusSource        history.Source           `json:"statusSource" yaml:"statusSource"`
	LastUpdated         string                   `json:"lastUpdated" yaml:"lastUpdated"`
	TaskProgress        *workflow.TaskProgress   `json:"taskProgress,omitempty" yaml:"taskProgress,omitempty"`
	InitializationState *InitializationState     `json:"initializationState,omitempty" yaml:"initializationState,omitempty"`
	Recommendation      *workflow.Recommendation `json:"recommendation" yaml:"recommendation"`
}

// CurrentStep returns the snapshot's current step
func (s *StatusSnapshot) CurrentStep() (workflow.Step, bool) {
	return workflow.CurrentStep(s.Workflow)
}

// IsInitialized reports whether the workspace is initialized
func (s *StatusSnapshot) IsInitialized() bool {
	return s.InitializationState == nil || s.InitializationState.Initialized
}
