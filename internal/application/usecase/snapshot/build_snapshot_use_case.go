package snapshot

import (
	"context"
	"path/filepath"
	"time"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/application/service"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/repository"
	domainservice "github.com/YoshitsuguKoike/specstatus/internal/domain/service"
)

// ArtifactScanLabel is the label of the heartbeat event appended on every snapshot
const ArtifactScanLabel = "Artifact scan"

// BuildSnapshotUseCase composes artifacts, branch context, workflow and history into one snapshot
type BuildSnapshotUseCase struct {
	files     output.FileAccessor
	resolver  *service.ArtifactResolverService
	branches  *service.BranchContextService
	evaluator *domainservice.WorkflowEvaluationService
	history   repository.HistoryRepository
	logger    app.Logger
	now       func() time.Time
}

// NewBuildSnapshotUseCase creates a new BuildSnapshotUseCase
func NewBuildSnapshotUseCase(
	files output.FileAccessor,
	resolver *service.ArtifactResolverService,
	branches *service.BranchContextService,
	evaluator *domainservice.WorkflowEvaluationService,
	historyRepo repository.HistoryRepository,
	logger app.Logger,
	now func() time.Time,
) *BuildSnapshotUseCase {
	if now == nil {
		now = time.Now
	}
	return &BuildSnapshotUseCase{
		files:     files,
		resolver:  resolver,
		branches:  branches,
		evaluator: evaluator,
		history:   historyRepo,
		logger:    logger,
		now:       now,
	}
}

// Execute builds the snapshot for the given workspace roots. The first root is primary:
// it decides initialization, owns the memory artifacts and keys the history.
func (u *BuildSnapshotUseCase) Execute(ctx context.Context, roots []string) (*dto.StatusSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := u.now()
	stamp := history.FormatTimestamp(start)

	if len(roots) == 0 {
		return emptySnapshot(branch.Unmatched("", branch.MatchStatusMissing), stamp, nil), nil
	}

	primary := roots[0]
	resolution := u.branches.Resolve(ctx, roots)
	branchContext := resolution.Context

	if !u.files.Exists(filepath.Join(primary, ".specify")) {
		u.logger.Debug("workspace %s is not initialized", primary)
		return emptySnapshot(branchContext, stamp, &dto.InitializationState{
			Initialized: false,
			Message:     dto.NotInitializedMessage,
		}), nil
	}

	featureRoot := ""
	if branchContext.IsMatched() && resolution.FeatureFolder != nil {
		featureRoot = resolution.FeatureFolder.Location
	}
	scan := u.resolver.Scan(primary, featureRoot)

	baseline := u.evaluator.FromArtifacts(scan.Artifacts, branchContext, scan.TaskProgress)
	snapshot := &dto.StatusSnapshot{
		BranchContext: branchContext,
		Artifacts:     scan.Artifacts,
		Workflow:      baseline.Steps,
		StatusSource:  history.SourceArtifactFallback,
		LastUpdated:   stamp,
		TaskProgress:  scan.TaskProgress,
	}

	if branchContext.IsMatched() {
		if key, ok := history.BuildBranchKey(primary, branchContext.BranchName); ok {
			u.applyHistory(ctx, snapshot, key, baseline, scan.TaskProgress)
		}
	}

	snapshot.Recommendation = u.evaluator.Recommend(scan.Artifacts, implementProgress(snapshot.Workflow, scan.TaskProgress))

	u.logger.Debug("status snapshot (%d artifacts) in %.1fms",
		len(snapshot.Artifacts), float64(u.now().Sub(start).Microseconds())/1000)
	return snapshot, nil
}

// applyHistory swaps in the event-derived workflow when history exists and
// appends the artifact-scan heartbeat.
func (u *BuildSnapshotUseCase) applyHistory(
	ctx context.Context,
	snapshot *dto.StatusSnapshot,
	key string,
	baseline domainservice.Derivation,
	progress *workflow.TaskProgress,
) {
	log, err := u.history.Read(ctx, key)
	if err != nil {
		u.logger.Warn("failed to read workflow history for %s: %v", key, err)
	}
	if log != nil && len(log.Events) > 0 {
		derived := u.evaluator.FromEvents(log.Events, snapshot.BranchContext)
		steps := derived.Steps
		if progress != nil {
			for i := range steps {
				if steps[i].ID == workflow.StepImplement {
					p := *progress
					steps[i].Progress = &p
				}
			}
		}
		snapshot.Workflow = steps
		snapshot.StatusSource = history.StatusSource(log.Events)
		snapshot.LastUpdated = log.LastUpdated
	}

	updated, err := u.history.Append(ctx, key, []history.Event{u.heartbeat(key, baseline)})
	if err != nil {
		u.logger.Warn("failed to append workflow history for %s: %v", key, err)
		return
	}
	if updated != nil {
		snapshot.LastUpdated = updated.LastUpdated
	}
}

func (u *BuildSnapshotUseCase) heartbeat(key string, baseline domainservice.Derivation) history.Event {
	stepID := workflow.StepImplement.String()
	if current, ok := baseline.Current(); ok {
		stepID = current.ID.String()
	}
	t := u.now()
	return history.Event{
		ID:        history.NewEventID(t),
		BranchKey: key,
		Type:      history.EventTypeArtifactScan,
		StepID:    stepID,
		Label:     ArtifactScanLabel,
		Timestamp: history.FormatTimestamp(t),
		Source:    history.SourceArtifactFallback,
	}
}

func implementProgress(steps []workflow.Step, fallback *workflow.TaskProgress) *workflow.TaskProgress {
	for _, step := range steps {
		if step.ID == workflow.StepImplement && step.Progress != nil {
			return step.Progress
		}
	}
	return fallback
}

func emptySnapshot(branchContext branch.Context, stamp string, state *dto.InitializationState) *dto.StatusSnapshot {
	return &dto.StatusSnapshot{
		BranchContext:       branchContext,
		Artifacts:           []artifact.Artifact{},
		Workflow:            []workflow.Step{},
		StatusSource:        history.SourceArtifactFallback,
		LastUpdated:         stamp,
		InitializationState: state,
	}
}
