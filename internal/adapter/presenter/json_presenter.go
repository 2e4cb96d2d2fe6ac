package presenter

import (
	"encoding/json"
	"io"

	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

// JSONPresenter implements output.Presenter for JSON output
// Formats all output as JSON for programmatic consumption
type JSONPresenter struct {
	output io.Writer
}

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter(output io.Writer) *JSONPresenter {
	return &JSONPresenter{output: output}
}

func (p *JSONPresenter) encode(v interface{}) error {
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PresentSnapshot presents the snapshot as JSON
func (p *JSONPresenter) PresentSnapshot(s *dto.StatusSnapshot) error {
	return p.encode(s)
}

// PresentHistory presents the history view as JSON
func (p *JSONPresenter) PresentHistory(v *dto.HistoryView) error {
	return p.encode(v)
}

// PresentBranches presents the branch listing as JSON
func (p *JSONPresenter) PresentBranches(v *dto.BranchIndexView) error {
	return p.encode(v)
}

// PresentRecorded presents a recording outcome as JSON
func (p *JSONPresenter) PresentRecorded(out *dto.RecordStepOutput) error {
	return p.encode(out)
}

// PresentManifest presents the static tables as JSON
func (p *JSONPresenter) PresentManifest(entries []artifact.Expectation, steps []workflow.Definition) error {
	return p.encode(manifestDocument(entries, steps))
}

// PresentError presents an error as JSON
func (p *JSONPresenter) PresentError(err error) error {
	result := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}
	return p.encode(result)
}

type manifestStep struct {
	ID                workflow.StepID `json:"id" yaml:"id"`
	Label             string          `json:"label" yaml:"label"`
	Order             int             `json:"order" yaml:"order"`
	Optional          bool            `json:"optional" yaml:"optional"`
	RequiredArtifacts []string        `json:"requiredArtifacts" yaml:"requiredArtifacts"`
}

type manifestDoc struct {
	Steps     []manifestStep         `json:"steps" yaml:"steps"`
	Artifacts []artifact.Expectation `json:"artifacts" yaml:"artifacts"`
}

func manifestDocument(entries []artifact.Expectation, steps []workflow.Definition) manifestDoc {
	doc := manifestDoc{Artifacts: entries}
	for _, def := range steps {
		doc.Steps = append(doc.Steps, manifestStep{
			ID:                def.ID,
			Label:             def.Label,
			Order:             def.Order,
			Optional:          def.Optional,
			RequiredArtifacts: workflow.RequiredArtifacts(def.ID),
		})
	}
	return doc
}

var _ output.Presenter = (*JSONPresenter)(nil)
