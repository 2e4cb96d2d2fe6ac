package presenter

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

// YAMLPresenter implements output.Presenter for YAML output
type YAMLPresenter struct {
	output io.Writer
}

// NewYAMLPresenter creates a new YAML presenter
func NewYAMLPresenter(output io.Writer) *YAMLPresenter {
	return &YAMLPresenter{output: output}
}

func (p *YAMLPresenter) encode(v interface{}) error {
	enc := yaml.NewEncoder(p.output)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (p *YAMLPresenter) PresentSnapshot(s *dto.StatusSnapshot) error {
	return p.encode(s)
}

func (p *YAMLPresenter) PresentHistory(v *dto.HistoryView) error {
	return p.encode(v)
}

func (p *YAMLPresenter) PresentBranches(v *dto.BranchIndexView) error {
	return p.encode(v)
}

func (p *YAMLPresenter) PresentRecorded(out *dto.RecordStepOutput) error {
	return p.encode(out)
}

func (p *YAMLPresenter) PresentManifest(entries []artifact.Expectation, steps []workflow.Definition) error {
	return p.encode(manifestDocument(entries, steps))
}

func (p *YAMLPresenter) PresentError(err error) error {
	return p.encode(map[string]interface{}{"success": false, "error": err.Error()})
}

var _ output.Presenter = (*YAMLPresenter)(nil)
