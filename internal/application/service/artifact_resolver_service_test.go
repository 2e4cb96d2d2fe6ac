package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/specstatus/internal/adapter/gateway/filesystem"
	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/testutil"
)

func newResolver(ws *testutil.Workspace) *ArtifactResolverService {
	return NewArtifactResolverService(filesystem.NewAferoFileAccessor(ws.Fs), app.NopLogger())
}

func statuses(artifacts []artifact.Artifact) map[string]artifact.Status {
	out := map[string]artifact.Status{}
	for _, a := range artifacts {
		out[a.ID] = a.Status
	}
	return out
}

func TestBuildExpected_MemoryOnlyWithoutFeature(t *testing.T) {
	r := newResolver(testutil.NewTestWorkspace(t, "/ws"))

	descriptors := r.BuildExpected("/ws", "")
	require.Len(t, descriptors, 1)
	assert.Equal(t, artifact.IDConstitution, descriptors[0].ID)
	assert.Equal(t, filepath.Join("/ws", ".specify", "memory", "constitution.md"), descriptors[0].Location)
}

func TestBuildExpected_FeatureFolder(t *testing.T) {
	r := newResolver(testutil.NewTestWorkspace(t, "/ws"))
	feature := filepath.Join("/ws", "specs", "001-first")

	descriptors := r.BuildExpected("/ws", feature)
	require.Len(t, descriptors, len(artifact.Manifest()))

	byID := map[string]ArtifactDescriptor{}
	for _, d := range descriptors {
		byID[d.ID] = d
	}
	assert.Equal(t, filepath.Join(feature, "spec.md"), byID[artifact.IDSpec].Location)
	assert.Equal(t, filepath.Join(feature, "checklists", "requirements.md"), byID[artifact.IDSpec].ChecklistLocation)
	assert.Equal(t, artifact.KindFolder, byID[artifact.IDContracts].Kind)
	assert.Empty(t, byID[artifact.IDPlan].ChecklistLocation)
}

func TestComputeStatus(t *testing.T) {
	ws := testutil.NewTestWorkspace(t, "/ws").Init()
	feature := ws.Feature("001-first")
	r := newResolver(ws)

	file := func(id, rel, checklist string) ArtifactDescriptor {
		d := ArtifactDescriptor{ID: id, Kind: artifact.KindFile, Location: filepath.Join(feature.Dir(), rel)}
		if checklist != "" {
			d.ChecklistLocation = filepath.Join(feature.Dir(), checklist)
		}
		return d
	}

	t.Run("missing file", func(t *testing.T) {
		assert.Equal(t, artifact.StatusMissing, r.ComputeStatus(file(artifact.IDPlan, "plan.md", "")))
	})

	t.Run("validated when checklist complete", func(t *testing.T) {
		feature.Spec(testutil.CleanDoc, testutil.CheckedList)
		assert.Equal(t, artifact.StatusValidated, r.ComputeStatus(file(artifact.IDSpec, "spec.md", "checklists/requirements.md")))
	})

	t.Run("complete when checklist incomplete", func(t *testing.T) {
		feature.Spec(testutil.CleanDoc, testutil.UncheckedList)
		assert.Equal(t, artifact.StatusComplete, r.ComputeStatus(file(artifact.IDSpec, "spec.md", "checklists/requirements.md")))
	})

	t.Run("open questions beat a complete checklist", func(t *testing.T) {
		feature.Spec(testutil.OpenQuestionDoc, testutil.CheckedList)
		assert.Equal(t, artifact.StatusOpenQuestions, r.ComputeStatus(file(artifact.IDSpec, "spec.md", "checklists/requirements.md")))
	})

	t.Run("placeholder token", func(t *testing.T) {
		feature.Write("plan.md", "# Plan for [FEATURE NAME]\n")
		assert.Equal(t, artifact.StatusOpenQuestions, r.ComputeStatus(file(artifact.IDPlan, "plan.md", "")))
	})

	t.Run("folder", func(t *testing.T) {
		d := ArtifactDescriptor{ID: artifact.IDContracts, Kind: artifact.KindFolder, Location: filepath.Join(feature.Dir(), "contracts")}
		assert.Equal(t, artifact.StatusMissing, r.ComputeStatus(d))
		ws.Mkdir("specs/001-first/contracts")
		assert.Equal(t, artifact.StatusComplete, r.ComputeStatus(d))
	})

	t.Run("whitespace constitution counts as missing", func(t *testing.T) {
		ws.Constitution("  \n\t\n")
		d := ArtifactDescriptor{ID: artifact.IDConstitution, Kind: artifact.KindFile, Location: ws.Path(".specify/memory/constitution.md")}
		assert.Equal(t, artifact.StatusMissing, r.ComputeStatus(d))
	})

	t.Run("whitespace elsewhere is complete", func(t *testing.T) {
		feature.Write("tasks.md", "   \n")
		assert.Equal(t, artifact.StatusComplete, r.ComputeStatus(file(artifact.IDTasks, "tasks.md", "")))
	})
}

func TestComputeAdjustments(t *testing.T) {
	ws := testutil.NewTestWorkspace(t, "/ws").Init()
	feature := ws.Feature("001-first").Write("plan.md", testutil.OpenQuestionDoc)
	r := newResolver(ws)

	d := ArtifactDescriptor{ID: artifact.IDPlan, Kind: artifact.KindFile, Location: filepath.Join(feature.Dir(), "plan.md")}
	adjustments := r.ComputeAdjustments(d)
	require.Len(t, adjustments, 1)
	assert.Equal(t, artifact.Adjustment{
		ID:       "plan-3-4-0",
		Label:    "NEEDS CLARIFICATION",
		FilePath: d.Location,
		Line:     3,
		Column:   4,
	}, adjustments[0])

	folder := ArtifactDescriptor{ID: artifact.IDContracts, Kind: artifact.KindFolder, Location: feature.Dir()}
	assert.Empty(t, r.ComputeAdjustments(folder))

	missing := ArtifactDescriptor{ID: artifact.IDTasks, Kind: artifact.KindFile, Location: filepath.Join(feature.Dir(), "tasks.md")}
	assert.Empty(t, r.ComputeAdjustments(missing))
}

func TestScan(t *testing.T) {
	ws := testutil.NewTestWorkspace(t, "/ws").Init().Constitution(testutil.CleanDoc)
	feature := ws.Feature("001-first").
		Spec(testutil.CleanDoc, testutil.CheckedList).
		Plan(testutil.CleanDoc).
		Tasks("- [x] a\n- [ ] b TODO\n- [ ] c\n- [ ] d\n")
	r := newResolver(ws)

	result := r.Scan("/ws", feature.Dir())

	require.Len(t, result.Artifacts, len(artifact.Manifest()))
	for i, e := range artifact.Manifest() {
		assert.Equal(t, e.ID, result.Artifacts[i].ID, "manifest order")
	}

	assert.Equal(t, map[string]artifact.Status{
		artifact.IDConstitution:          artifact.StatusComplete,
		artifact.IDSpec:                  artifact.StatusValidated,
		artifact.IDPlan:                  artifact.StatusComplete,
		artifact.IDTasks:                 artifact.StatusOpenQuestions,
		artifact.IDResearch:              artifact.StatusComplete,
		artifact.IDDataModel:             artifact.StatusComplete,
		artifact.IDQuickstart:            artifact.StatusMissing,
		artifact.IDContracts:             artifact.StatusComplete,
		artifact.IDChecklistRequirements: artifact.StatusComplete,
	}, statuses(result.Artifacts))

	tasks, ok := artifact.FindByID(result.Artifacts, artifact.IDTasks)
	require.True(t, ok)
	assert.Equal(t, 1, tasks.AdjustmentCount)
	assert.Len(t, tasks.Adjustments, tasks.AdjustmentCount)

	require.NotNil(t, result.TaskProgress)
	assert.Equal(t, 1, result.TaskProgress.Completed)
	assert.Equal(t, 4, result.TaskProgress.Total)
	assert.Equal(t, "[###-------]", result.TaskProgress.Bar)
}

func TestScan_NoTasksNoProgress(t *testing.T) {
	ws := testutil.NewTestWorkspace(t, "/ws").Init()
	result := newResolver(ws).Scan("/ws", ws.Feature("001-first").Dir())

	assert.Nil(t, result.TaskProgress)
	for _, a := range result.Artifacts {
		assert.Equal(t, artifact.StatusMissing, a.Status, a.ID)
		assert.Zero(t, a.AdjustmentCount)
	}
}
