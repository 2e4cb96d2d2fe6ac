package workflow

import (
	"errors"
	"fmt"

	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/pkg/statusparser"
)

// ErrUnknownStep is returned when a step id is not part of the fixed step table
var ErrUnknownStep = errors.New("unknown workflow step")

// StepID identifies one of the fixed workflow steps
type StepID string

const (
	StepConstitution StepID = "constitution"
	StepSpecify      StepID = "specify"
	StepPlan         StepID = "plan"
	StepTasks        StepID = "tasks"
	StepAnalyze      StepID = "analyze"
	StepImplement    StepID = "implement"
)

// String returns the string representation of the step id
func (s StepID) String() string {
	return string(s)
}

// StepStatus is the derived state of a workflow step
type StepStatus string

const (
	StepStatusComplete   StepStatus = "complete"
	StepStatusCurrent    StepStatus = "current"
	StepStatusUpcoming   StepStatus = "upcoming"
	StepStatusIncomplete StepStatus = "incomplete"
)

// TaskProgress is the implement step's progress projection
type TaskProgress = statusparser.TaskProgress

// Definition is a row of the fixed step table
type Definition struct {
	ID       StepID
	Label    string
	Order    int
	Optional bool
}

var definitions = []Definition{
	{ID: StepConstitution, Label: "Constitution", Order: 1},
	{ID: StepSpecify, Label: "Specify", Order: 2},
	{ID: StepPlan, Label: "Plan", Order: 3},
	{ID: StepTasks, Label: "Tasks", Order: 4},
	{ID: StepAnalyze, Label: "Analyze", Order: 5},
	{ID: StepImplement, Label: "Implement", Order: 6},
}

// analyze and implement are absent: analyze requires every artifact in the
// snapshot, implement depends on task progress only.
var requirements = map[StepID][]string{
	StepConstitution: {artifact.IDConstitution},
	StepSpecify:      {artifact.IDSpec, artifact.IDChecklistRequirements},
	StepPlan:         {artifact.IDPlan, artifact.IDResearch, artifact.IDDataModel, artifact.IDContracts},
	StepTasks:        {artifact.IDTasks},
}

// Definitions returns the fixed step table in order
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// RequiredArtifacts returns the static requirement list of a step
func RequiredArtifacts(id StepID) []string {
	ids := requirements[id]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// LookupDefinition finds a step in the fixed table
func LookupDefinition(id StepID) (Definition, error) {
	for _, def := range definitions {
		if def.ID == id {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownStep, id)
}

// Step is one derived entry of the workflow sequence
type Step struct {
	ID          StepID        `json:"id" yaml:"id"`
	Label       string        `json:"label" yaml:"label"`
	Order       int           `json:"order" yaml:"order"`
	Optional    bool          `json:"optional" yaml:"optional"`
	Status      StepStatus    `json:"status" yaml:"status"`
	ArtifactIDs []string      `json:"artifactIds" yaml:"artifactIds"`
	Progress    *TaskProgress `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// Recommendation points at the most urgent unmet step and artifact
type Recommendation struct {
	StepID        StepID `json:"stepId" yaml:"stepId"`
	StepLabel     string `json:"stepLabel" yaml:"stepLabel"`
	ArtifactID    string `json:"artifactId" yaml:"artifactId"`
	ArtifactLabel string `json:"artifactLabel" yaml:"artifactLabel"`
	Reason        string `json:"reason" yaml:"reason"`
}

// Recommendation reasons
const (
	ReasonArtifactMissing = "Required artifact missing"
	ReasonNeedsAttention  = "Artifact needs attention"
	ReasonTasksIncomplete = "Tasks incomplete"
)

// CurrentStep returns the step marked current, falling back to the last step
func CurrentStep(steps []Step) (Step, bool) {
	for _, step := range steps {
		if step.Status == StepStatusCurrent {
			return step, true
		}
	}
	if len(steps) == 0 {
		return Step{}, false
	}
	return steps[len(steps)-1], true
}
