package artifact

import (
	"strings"

	"github.com/YoshitsuguKoike/specstatus/internal/pkg/statusparser"
)

// Status represents the derived state of an expected artifact
type Status string

const (
	StatusValidated     Status = "validated"
	StatusComplete      Status = "complete"
	StatusOpenQuestions Status = "open-questions"
	StatusMissing       Status = "missing"
)

// IsGood reports whether the artifact is finished (complete or validated)
func (s Status) IsGood() bool {
	return s == StatusComplete || s == StatusValidated
}

// IsPresent reports whether the artifact exists at all
func (s Status) IsPresent() bool {
	return s != StatusMissing
}

// Kind distinguishes file artifacts from folder artifacts
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Adjustment is a located marker occurrence inside an artifact file
type Adjustment struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	FilePath string `json:"filePath" yaml:"filePath"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
}

// Artifact is the runtime view of one manifest entry, recomputed on every snapshot
type Artifact struct {
	ID              string       `json:"id" yaml:"id"`
	Label           string       `json:"label" yaml:"label"`
	Location        string       `json:"location" yaml:"location"`
	Kind            Kind         `json:"kind" yaml:"kind"`
	StepID          string       `json:"stepId" yaml:"stepId"`
	Status          Status       `json:"status" yaml:"status"`
	AdjustmentCount int          `json:"adjustmentCount" yaml:"adjustmentCount"`
	Adjustments     []Adjustment `json:"adjustments,omitempty" yaml:"adjustments,omitempty"`
}

// WithAdjustments attaches adjustments and keeps the count in sync.
// An empty list is stored as absent.
func (a Artifact) WithAdjustments(adjustments []Adjustment) Artifact {
	a.AdjustmentCount = len(adjustments)
	if len(adjustments) == 0 {
		a.Adjustments = nil
		return a
	}
	a.Adjustments = adjustments
	return a
}

// ClassifyInput carries the observations needed to classify an artifact
type ClassifyInput struct {
	Exists            bool
	Kind              Kind
	Text              string
	ChecklistComplete bool
}

// Classify maps observations to a status. Open questions take priority over a
// completed checklist; folders are complete as soon as they exist.
func Classify(in ClassifyInput) Status {
	if !in.Exists {
		return StatusMissing
	}

	if in.Kind == KindFolder {
		return StatusComplete
	}

	if statusparser.ContainsOpenQuestionMarkers(in.Text) || statusparser.ContainsPlaceholderTokens(in.Text) {
		return StatusOpenQuestions
	}

	if in.ChecklistComplete {
		return StatusValidated
	}

	return StatusComplete
}

// HasNonWhitespaceContent reports whether text holds anything but whitespace
func HasNonWhitespaceContent(text string) bool {
	return strings.TrimSpace(text) != ""
}

// FindByID returns the artifact with the given id
func FindByID(artifacts []Artifact, id string) (Artifact, bool) {
	for _, a := range artifacts {
		if a.ID == id {
			return a, true
		}
	}
	return Artifact{}, false
}
