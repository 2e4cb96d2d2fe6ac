package service

import (
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

// DerivationSource tells which input a workflow was derived from
type DerivationSource string

const (
	DerivedFromArtifactScan DerivationSource = "artifact-scan"
	DerivedFromEventLog     DerivationSource = "event-log"
)

// Derivation is the evaluator result: the ordered steps tagged with their origin
type Derivation struct {
	From  DerivationSource
	Steps []workflow.Step
}

// Current returns the current step, or the last step when none is current
func (d Derivation) Current() (workflow.Step, bool) {
	return workflow.CurrentStep(d.Steps)
}

// WorkflowEvaluationService derives step states and the next recommended action.
// All methods are pure functions of their input.
type WorkflowEvaluationService struct{}

// NewWorkflowEvaluationService creates a new workflow evaluation service
func NewWorkflowEvaluationService() *WorkflowEvaluationService {
	return &WorkflowEvaluationService{}
}

type stepEvaluation struct {
	def         workflow.Definition
	artifactIDs []string
	complete    bool
}

// FromArtifacts evaluates the workflow from artifact statuses and task progress
func (s *WorkflowEvaluationService) FromArtifacts(
	artifacts []artifact.Artifact,
	branchContext branch.Context,
	progress *workflow.TaskProgress,
) Derivation {
	if !branchContext.IsMatched() {
		return Derivation{From: DerivedFromArtifactScan, Steps: allIncomplete()}
	}

	evaluations := s.evaluateArtifacts(artifacts, progress)
	steps := assignStatuses(evaluations)
	for i := range steps {
		if steps[i].ID == workflow.StepImplement && progress != nil {
			p := *progress
			steps[i].Progress = &p
		}
	}
	return Derivation{From: DerivedFromArtifactScan, Steps: steps}
}

// FromEvents evaluates the workflow from recorded history. A step is complete
// as soon as one session-log event names it, whatever the artifacts say.
func (s *WorkflowEvaluationService) FromEvents(events []history.Event, branchContext branch.Context) Derivation {
	if !branchContext.IsMatched() {
		return Derivation{From: DerivedFromEventLog, Steps: allIncomplete()}
	}

	completed := make(map[string]bool)
	for _, e := range events {
		if e.Source == history.SourceSessionLog {
			completed[e.StepID] = true
		}
	}

	defs := workflow.Definitions()
	evaluations := make([]stepEvaluation, 0, len(defs))
	for _, def := range defs {
		evaluations = append(evaluations, stepEvaluation{
			def:         def,
			artifactIDs: workflow.RequiredArtifacts(def.ID),
			complete:    completed[def.ID.String()],
		})
	}
	return Derivation{From: DerivedFromEventLog, Steps: assignStatuses(evaluations)}
}

// Recommend returns the most urgent unmet step, or nil when nothing is left.
// The first step in order with an unmet condition wins.
func (s *WorkflowEvaluationService) Recommend(artifacts []artifact.Artifact, progress *workflow.TaskProgress) *workflow.Recommendation {
	if len(artifacts) == 0 {
		return nil
	}

	byID := indexArtifacts(artifacts)
	for _, def := range workflow.Definitions() {
		switch def.ID {
		case workflow.StepAnalyze:
			for _, a := range artifacts {
				if a.Status.IsGood() {
					continue
				}
				reason := workflow.ReasonNeedsAttention
				if a.Status == artifact.StatusMissing {
					reason = workflow.ReasonArtifactMissing
				}
				return &workflow.Recommendation{
					StepID:        def.ID,
					StepLabel:     def.Label,
					ArtifactID:    a.ID,
					ArtifactLabel: a.Label,
					Reason:        reason,
				}
			}

		case workflow.StepImplement:
			if progress == nil || progress.Total <= 0 {
				continue
			}
			if progress.IsComplete() {
				return nil
			}
			label := "Tasks"
			if tasks, ok := byID[artifact.IDTasks]; ok {
				label = tasks.Label
			}
			return &workflow.Recommendation{
				StepID:        def.ID,
				StepLabel:     def.Label,
				ArtifactID:    artifact.IDTasks,
				ArtifactLabel: label,
				Reason:        workflow.ReasonTasksIncomplete,
			}

		default:
			for _, id := range workflow.RequiredArtifacts(def.ID) {
				a, ok := byID[id]
				if ok && a.Status.IsPresent() {
					continue
				}
				label := id
				if ok {
					label = a.Label
				}
				return &workflow.Recommendation{
					StepID:        def.ID,
					StepLabel:     def.Label,
					ArtifactID:    id,
					ArtifactLabel: label,
					Reason:        workflow.ReasonArtifactMissing,
				}
			}
		}
	}

	return nil
}

func (s *WorkflowEvaluationService) evaluateArtifacts(artifacts []artifact.Artifact, progress *workflow.TaskProgress) []stepEvaluation {
	byID := indexArtifacts(artifacts)
	allIDs := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		allIDs = append(allIDs, a.ID)
	}

	defs := workflow.Definitions()
	evaluations := make([]stepEvaluation, 0, len(defs))
	for _, def := range defs {
		var eval stepEvaluation
		eval.def = def

		switch def.ID {
		case workflow.StepImplement:
			eval.artifactIDs = []string{artifact.IDTasks}
			eval.complete = progress != nil && progress.IsComplete()

		case workflow.StepAnalyze:
			eval.artifactIDs = allIDs
			eval.complete = requirementsMet(allIDs, byID, artifact.Status.IsGood)

		default:
			required := workflow.RequiredArtifacts(def.ID)
			eval.artifactIDs = required
			eval.complete = requirementsMet(required, byID, artifact.Status.IsPresent)
		}

		evaluations = append(evaluations, eval)
	}
	return evaluations
}

// requirementsMet is false for an empty requirement list
func requirementsMet(ids []string, byID map[string]artifact.Artifact, ok func(artifact.Status) bool) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		a, found := byID[id]
		if !found || !ok(a.Status) {
			return false
		}
	}
	return true
}

// assignStatuses applies the current-step scan: the first incomplete step is
// current (the last step when all are complete), earlier steps are complete or
// incomplete on their own merit, later steps are upcoming.
func assignStatuses(evaluations []stepEvaluation) []workflow.Step {
	current := len(evaluations) - 1
	for i, eval := range evaluations {
		if !eval.complete {
			current = i
			break
		}
	}

	steps := make([]workflow.Step, 0, len(evaluations))
	for i, eval := range evaluations {
		status := workflow.StepStatusUpcoming
		switch {
		case i < current && eval.complete:
			status = workflow.StepStatusComplete
		case i < current:
			status = workflow.StepStatusIncomplete
		case i == current:
			status = workflow.StepStatusCurrent
		}
		steps = append(steps, workflow.Step{
			ID:          eval.def.ID,
			Label:       eval.def.Label,
			Order:       eval.def.Order,
			Optional:    eval.def.Optional,
			Status:      status,
			ArtifactIDs: eval.artifactIDs,
		})
	}
	return steps
}

func allIncomplete() []workflow.Step {
	defs := workflow.Definitions()
	steps := make([]workflow.Step, 0, len(defs))
	for _, def := range defs {
		steps = append(steps, workflow.Step{
			ID:          def.ID,
			Label:       def.Label,
			Order:       def.Order,
			Optional:    def.Optional,
			Status:      workflow.StepStatusIncomplete,
			ArtifactIDs: []string{},
		})
	}
	return steps
}

func indexArtifacts(artifacts []artifact.Artifact) map[string]artifact.Artifact {
	byID := make(map[string]artifact.Artifact, len(artifacts))
	for _, a := range artifacts {
		byID[a.ID] = a
	}
	return byID
}
