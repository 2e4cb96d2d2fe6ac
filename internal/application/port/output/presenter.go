package output

import (
	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

// Presenter defines the interface for presenting status output to users
// Implementations format for terminals, JSON, or YAML
type Presenter interface {
	// PresentSnapshot renders one status snapshot
	PresentSnapshot(snapshot *dto.StatusSnapshot) error

	// PresentHistory renders the history of the current branch
	PresentHistory(view *dto.HistoryView) error

	// PresentBranches renders the list of branches with stored history
	PresentBranches(view *dto.BranchIndexView) error

	// PresentRecorded reports the outcome of a manual step recording
	PresentRecorded(out *dto.RecordStepOutput) error

	// PresentManifest renders the static artifact and step tables
	PresentManifest(entries []artifact.Expectation, steps []workflow.Definition) error

	// PresentError presents an error. Only write failures are returned.
	PresentError(err error) error
}
