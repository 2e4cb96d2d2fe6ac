package service

import (
	"fmt"
	"path/filepath"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
	"github.com/YoshitsuguKoike/specstatus/internal/pkg/statusparser"
)

// ArtifactDescriptor is a manifest entry resolved to concrete locations
type ArtifactDescriptor struct {
	ID                string
	Label             string
	Location          string
	Kind              artifact.Kind
	StepID            string
	ChecklistLocation string
}

// ScanResult holds the artifacts of one scan and the task progress read from tasks.md
type ScanResult struct {
	Artifacts    []artifact.Artifact
	TaskProgress *workflow.TaskProgress
}

// ArtifactResolverService maps the manifest onto the workspace and classifies each artifact
type ArtifactResolverService struct {
	files  output.FileAccessor
	logger app.Logger
}

// NewArtifactResolverService creates a new artifact resolver
func NewArtifactResolverService(files output.FileAccessor, logger app.Logger) *ArtifactResolverService {
	return &ArtifactResolverService{
		files:  files,
		logger: logger,
	}
}

// MemoryRoot returns the directory holding memory-sourced artifacts
func MemoryRoot(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".specify", "memory")
}

// BuildExpected resolves the manifest. With an empty featureRoot only
// memory-sourced entries are returned.
func (s *ArtifactResolverService) BuildExpected(workspaceRoot, featureRoot string) []ArtifactDescriptor {
	memoryRoot := MemoryRoot(workspaceRoot)

	var descriptors []ArtifactDescriptor
	for _, e := range artifact.Manifest() {
		var base string
		switch e.Source {
		case artifact.SourceMemory:
			base = memoryRoot
		default:
			if featureRoot == "" {
				continue
			}
			base = featureRoot
		}

		d := ArtifactDescriptor{
			ID:       e.ID,
			Label:    e.Label,
			Location: filepath.Join(base, filepath.FromSlash(e.RelativePath)),
			Kind:     e.Kind,
			StepID:   e.StepID,
		}
		if e.ChecklistRelativePath != "" {
			d.ChecklistLocation = filepath.Join(base, filepath.FromSlash(e.ChecklistRelativePath))
		}
		descriptors = append(descriptors, d)
	}
	return descriptors
}

// ComputeStatus classifies one descriptor against the filesystem
func (s *ArtifactResolverService) ComputeStatus(d ArtifactDescriptor) artifact.Status {
	text, ok := "", false
	if d.Kind == artifact.KindFile {
		text, ok = s.files.ReadText(d.Location)
	}
	return s.computeStatus(d, text, ok)
}

func (s *ArtifactResolverService) computeStatus(d ArtifactDescriptor, text string, readable bool) artifact.Status {
	if d.Kind == artifact.KindFolder {
		return artifact.Classify(artifact.ClassifyInput{
			Exists: s.files.Exists(d.Location),
			Kind:   artifact.KindFolder,
		})
	}

	if !readable {
		s.logger.Debug("artifact %s not readable at %s", d.ID, d.Location)
		return artifact.StatusMissing
	}

	// Whitespace-only constitution files are scaffolding, not content.
	if d.ID == artifact.IDConstitution && !artifact.HasNonWhitespaceContent(text) {
		return artifact.StatusMissing
	}

	checklistComplete := false
	if d.ChecklistLocation != "" {
		if checklist, ok := s.files.ReadText(d.ChecklistLocation); ok {
			checklistComplete = statusparser.IsChecklistComplete(checklist)
		}
	}

	return artifact.Classify(artifact.ClassifyInput{
		Exists:            true,
		Kind:              artifact.KindFile,
		Text:              text,
		ChecklistComplete: checklistComplete,
	})
}

// ComputeAdjustments locates the adjustment markers of a file artifact
func (s *ArtifactResolverService) ComputeAdjustments(d ArtifactDescriptor) []artifact.Adjustment {
	if d.Kind == artifact.KindFolder {
		return nil
	}
	text, ok := s.files.ReadText(d.Location)
	if !ok {
		return nil
	}
	return buildAdjustments(d, text)
}

func buildAdjustments(d ArtifactDescriptor, text string) []artifact.Adjustment {
	if text == "" {
		return nil
	}
	matches := statusparser.ExtractAdjustments(text)
	adjustments := make([]artifact.Adjustment, 0, len(matches))
	for i, m := range matches {
		adjustments = append(adjustments, artifact.Adjustment{
			ID:       fmt.Sprintf("%s-%d-%d-%d", d.ID, m.Line, m.Column, i),
			Label:    m.Label,
			FilePath: d.Location,
			Line:     m.Line,
			Column:   m.Column,
		})
	}
	return adjustments
}

// Scan resolves and classifies every expected artifact, one at a time in
// manifest order. Task progress is taken from the tasks artifact when readable.
func (s *ArtifactResolverService) Scan(workspaceRoot, featureRoot string) ScanResult {
	var result ScanResult
	for _, d := range s.BuildExpected(workspaceRoot, featureRoot) {
		text, readable := "", false
		if d.Kind == artifact.KindFile {
			text, readable = s.files.ReadText(d.Location)
		}

		if d.ID == artifact.IDTasks && readable && text != "" {
			progress := statusparser.ParseTaskProgress(text)
			result.TaskProgress = &progress
		}

		var adjustments []artifact.Adjustment
		if readable {
			adjustments = buildAdjustments(d, text)
		}

		a := artifact.Artifact{
			ID:       d.ID,
			Label:    d.Label,
			Location: d.Location,
			Kind:     d.Kind,
			StepID:   d.StepID,
			Status:   s.computeStatus(d, text, readable),
		}
		result.Artifacts = append(result.Artifacts, a.WithAdjustments(adjustments))
	}
	return result
}
