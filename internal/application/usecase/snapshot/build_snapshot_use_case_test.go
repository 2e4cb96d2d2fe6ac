package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/specstatus/internal/adapter/gateway/filesystem"
	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/service"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
	domainservice "github.com/YoshitsuguKoike/specstatus/internal/domain/service"
	"github.com/YoshitsuguKoike/specstatus/internal/infrastructure/repository"
	"github.com/YoshitsuguKoike/specstatus/internal/testutil"
)

const (
	root    = "/ws/project"
	feature = "001-first"
)

var fixedNow = time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ws       *testutil.Workspace
	provider *testutil.StaticBranchProvider
	repo     *repository.FileHistoryRepository
	clock    time.Time
	useCase  *BuildSnapshotUseCase
}

func newFixture(t *testing.T, branchName string) *fixture {
	t.Helper()
	f := &fixture{
		ws:       testutil.NewTestWorkspace(t, root),
		provider: testutil.NewStaticBranchProvider(branchName),
		clock:    fixedNow,
	}
	now := func() time.Time { return f.clock }
	files := filesystem.NewAferoFileAccessor(f.ws.Fs)
	logger := app.NopLogger()

	f.repo = repository.NewFileHistoryRepository(f.ws.Fs, "/storage", logger, now)
	f.useCase = NewBuildSnapshotUseCase(
		files,
		service.NewArtifactResolverService(files, logger),
		service.NewBranchContextService(files, f.provider, domainservice.NewBranchMatcherService(), logger),
		domainservice.NewWorkflowEvaluationService(),
		f.repo,
		logger,
		now,
	)
	return f
}

func (f *fixture) key() string {
	key, _ := history.BuildBranchKey(root, feature)
	return key
}

func (f *fixture) execute(t *testing.T) *dto.StatusSnapshot {
	t.Helper()
	snapshot, err := f.useCase.Execute(context.Background(), []string{root})
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	return snapshot
}

func stepStatuses(steps []workflow.Step) map[workflow.StepID]workflow.StepStatus {
	out := map[workflow.StepID]workflow.StepStatus{}
	for _, s := range steps {
		out[s.ID] = s.Status
	}
	return out
}

func sessionEvent(step string, at time.Time) history.Event {
	key, _ := history.BuildBranchKey(root, feature)
	return history.Event{
		ID:        history.NewEventID(at),
		BranchKey: key,
		Type:      history.EventTypeManual,
		StepID:    step,
		Label:     step,
		Timestamp: history.FormatTimestamp(at),
		Source:    history.SourceSessionLog,
	}
}

func TestExecute_NoRoots(t *testing.T) {
	f := newFixture(t, feature)

	snapshot, err := f.useCase.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, branch.MatchStatusMissing, snapshot.BranchContext.MatchStatus)
	assert.Empty(t, snapshot.Artifacts)
	assert.Empty(t, snapshot.Workflow)
	assert.Nil(t, snapshot.Recommendation)
}

func TestExecute_CancelledContext(t *testing.T) {
	f := newFixture(t, feature)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.useCase.Execute(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_NotInitialized(t *testing.T) {
	f := newFixture(t, feature)
	f.ws.Feature(feature).Write("spec.md", testutil.CleanDoc)

	snapshot := f.execute(t)

	assert.False(t, snapshot.IsInitialized())
	require.NotNil(t, snapshot.InitializationState)
	assert.Equal(t, dto.NotInitializedMessage, snapshot.InitializationState.Message)
	assert.Empty(t, snapshot.Artifacts)
	assert.Empty(t, snapshot.Workflow)
	assert.Equal(t, history.SourceArtifactFallback, snapshot.StatusSource)
	assert.Equal(t, branch.MatchStatusMatched, snapshot.BranchContext.MatchStatus)

	log, err := f.repo.Read(context.Background(), f.key())
	require.NoError(t, err)
	assert.Nil(t, log, "no history I/O before initialization")
}

func TestExecute_ArtifactBaseline(t *testing.T) {
	f := newFixture(t, feature)
	f.ws.Init().Constitution(testutil.CleanDoc)
	f.ws.Feature(feature).Spec(testutil.CleanDoc, testutil.CheckedList)

	snapshot := f.execute(t)

	assert.True(t, snapshot.IsInitialized())
	assert.Equal(t, feature, snapshot.BranchContext.FeatureFolderName)
	assert.Len(t, snapshot.Artifacts, len(artifact.Manifest()))
	assert.Equal(t, history.SourceArtifactFallback, snapshot.StatusSource)
	assert.Equal(t, map[workflow.StepID]workflow.StepStatus{
		workflow.StepConstitution: workflow.StepStatusComplete,
		workflow.StepSpecify:      workflow.StepStatusComplete,
		workflow.StepPlan:         workflow.StepStatusCurrent,
		workflow.StepTasks:        workflow.StepStatusUpcoming,
		workflow.StepAnalyze:      workflow.StepStatusUpcoming,
		workflow.StepImplement:    workflow.StepStatusUpcoming,
	}, stepStatuses(snapshot.Workflow))

	require.NotNil(t, snapshot.Recommendation)
	assert.Equal(t, workflow.StepPlan, snapshot.Recommendation.StepID)
	assert.Equal(t, artifact.IDPlan, snapshot.Recommendation.ArtifactID)
	assert.Equal(t, workflow.ReasonArtifactMissing, snapshot.Recommendation.Reason)

	// The heartbeat is recorded against the artifact baseline's current step.
	log, err := f.repo.Read(context.Background(), f.key())
	require.NoError(t, err)
	require.NotNil(t, log)
	require.Len(t, log.Events, 1)
	assert.Equal(t, history.EventTypeArtifactScan, log.Events[0].Type)
	assert.Equal(t, "plan", log.Events[0].StepID)
	assert.Equal(t, ArtifactScanLabel, log.Events[0].Label)
	assert.Equal(t, history.SourceArtifactFallback, log.Events[0].Source)
	assert.Equal(t, log.LastUpdated, snapshot.LastUpdated)
}

func TestExecute_HeartbeatDeduplicated(t *testing.T) {
	f := newFixture(t, feature)
	f.ws.Init().Constitution(testutil.CleanDoc)
	f.ws.Feature(feature)

	f.execute(t)
	f.clock = f.clock.Add(30 * time.Second)
	f.execute(t)

	log, err := f.repo.Read(context.Background(), f.key())
	require.NoError(t, err)
	require.Len(t, log.Events, 1)

	f.clock = f.clock.Add(2 * time.Minute)
	f.execute(t)
	log, err = f.repo.Read(context.Background(), f.key())
	require.NoError(t, err)
	assert.Len(t, log.Events, 2)
}

func TestExecute_ArtifactOnlyHistoryKeepsFallbackSource(t *testing.T) {
	f := newFixture(t, feature)
	f.ws.Init().Constitution(testutil.CleanDoc)
	f.ws.Feature(feature)

	f.execute(t)
	f.clock = f.clock.Add(5 * time.Minute)
	snapshot := f.execute(t)

	// History exists but holds only heartbeats: no step is complete from events.
	assert.Equal(t, history.SourceArtifactFallback, snapshot.StatusSource)
	assert.Equal(t, workflow.StepStatusCurrent, stepStatuses(snapshot.Workflow)[workflow.StepConstitution])
}

func TestExecute_SessionLogOverridesArtifacts(t *testing.T) {
	f := newFixture(t, feature)
	f.ws.Init().Constitution(testutil.CleanDoc)
	f.ws.Feature(feature).Tasks("- [x] a\n- [ ] b\n")

	var events []history.Event
	for i, step := range []string{"constitution", "specify", "plan", "tasks"} {
		events = append(events, sessionEvent(step, fixedNow.Add(-time.Hour+time.Duration(i)*time.Minute)))
	}
	_, err := f.repo.Append(context.Background(), f.key(), events)
	require.NoError(t, err)

	snapshot := f.execute(t)

	assert.Equal(t, history.SourceSessionLog, snapshot.StatusSource)
	statuses := stepStatuses(snapshot.Workflow)
	assert.Equal(t, workflow.StepStatusComplete, statuses[workflow.StepSpecify], "spec.md is missing but recorded as done")
	assert.Equal(t, workflow.StepStatusCurrent, statuses[workflow.StepAnalyze])

	current, ok := snapshot.CurrentStep()
	require.True(t, ok)
	assert.Equal(t, workflow.StepAnalyze, current.ID)

	for _, step := range snapshot.Workflow {
		if step.ID == workflow.StepImplement {
			require.NotNil(t, step.Progress, "task progress re-attached to implement")
			assert.Equal(t, 1, step.Progress.Completed)
			assert.Equal(t, 2, step.Progress.Total)
		}
	}

	// Recommendation still comes from the artifacts.
	require.NotNil(t, snapshot.Recommendation)
	assert.Equal(t, workflow.StepSpecify, snapshot.Recommendation.StepID)

	log, err := f.repo.Read(context.Background(), f.key())
	require.NoError(t, err)
	require.Len(t, log.Events, 5)
	last := log.Events[len(log.Events)-1]
	assert.Equal(t, history.EventTypeArtifactScan, last.Type)
	assert.Equal(t, "specify", last.StepID, "heartbeat uses the artifact baseline")
}

func TestExecute_UnmatchedBranch(t *testing.T) {
	f := newFixture(t, "main")
	f.ws.Init().Constitution(testutil.CleanDoc)
	f.ws.Feature(feature)

	snapshot := f.execute(t)

	assert.Equal(t, branch.MatchStatusMissing, snapshot.BranchContext.MatchStatus)
	require.Len(t, snapshot.Artifacts, 1, "only memory artifacts without a feature folder")
	assert.Equal(t, artifact.IDConstitution, snapshot.Artifacts[0].ID)
	for _, step := range snapshot.Workflow {
		assert.Equal(t, workflow.StepStatusIncomplete, step.Status)
		assert.Empty(t, step.ArtifactIDs)
	}
	assert.Equal(t, history.FormatTimestamp(fixedNow), snapshot.LastUpdated)

	keys, err := f.repo.Index()
	require.NoError(t, err)
	assert.Empty(t, keys, "no heartbeat without a matched branch")
}

func TestExecute_Complete(t *testing.T) {
	f := newFixture(t, feature)
	f.ws.Init().Constitution(testutil.CleanDoc)
	f.ws.Feature(feature).
		Spec(testutil.CleanDoc, testutil.CheckedList).
		Plan(testutil.CleanDoc).
		Quickstart(testutil.CleanDoc).
		Tasks("- [x] a\n- [x] b\n")

	snapshot := f.execute(t)

	for _, step := range snapshot.Workflow {
		if step.ID == workflow.StepImplement {
			assert.Equal(t, workflow.StepStatusCurrent, step.Status, "last step stands in when all are complete")
			continue
		}
		assert.Equal(t, workflow.StepStatusComplete, step.Status, step.ID)
	}
	assert.Nil(t, snapshot.Recommendation)
	require.NotNil(t, snapshot.TaskProgress)
	assert.True(t, snapshot.TaskProgress.IsComplete())
}
