package service

import (
	"context"
	"path/filepath"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	domainservice "github.com/YoshitsuguKoike/specstatus/internal/domain/service"
)

// SpecsDirName is the directory under each workspace root that holds feature folders
const SpecsDirName = "specs"

// BranchContextService resolves the current branch against the feature folders of all roots
type BranchContextService struct {
	files    output.FileAccessor
	provider output.BranchProvider
	matcher  *domainservice.BranchMatcherService
	logger   app.Logger
}

// NewBranchContextService creates a new branch context service.
// provider may be nil when no branch information is available.
func NewBranchContextService(
	files output.FileAccessor,
	provider output.BranchProvider,
	matcher *domainservice.BranchMatcherService,
	logger app.Logger,
) *BranchContextService {
	return &BranchContextService{
		files:    files,
		provider: provider,
		matcher:  matcher,
		logger:   logger,
	}
}

// CurrentBranch returns the branch checked out at root, or "" when unknown
func (s *BranchContextService) CurrentBranch(ctx context.Context, root string) string {
	if s.provider == nil {
		return ""
	}
	name, err := s.provider.CurrentBranchName(ctx, root)
	if err != nil {
		s.logger.Debug("branch lookup failed for %s: %v", root, err)
		return ""
	}
	return name
}

// DiscoverFeatureFolders lists the directories under <root>/specs for every root.
// Roots without a specs directory contribute nothing.
func (s *BranchContextService) DiscoverFeatureFolders(roots []string) []branch.SpecFolder {
	var folders []branch.SpecFolder
	for _, root := range roots {
		specsRoot := filepath.Join(root, SpecsDirName)
		entries, ok := s.files.ListChildren(specsRoot)
		if !ok {
			continue
		}
		for _, e := range entries {
			if !e.IsDir {
				continue
			}
			folders = append(folders, branch.SpecFolder{
				Name:     e.Name,
				Location: filepath.Join(specsRoot, e.Name),
				ModTime:  e.ModTime,
			})
		}
	}
	return folders
}

// Resolve reads the branch of the primary root and matches it against all feature folders
func (s *BranchContextService) Resolve(ctx context.Context, roots []string) branch.Resolution {
	if len(roots) == 0 {
		return branch.Resolution{Context: branch.Unmatched("", branch.MatchStatusMissing)}
	}
	name := s.CurrentBranch(ctx, roots[0])
	return s.matcher.Resolve(name, s.DiscoverFeatureFolders(roots))
}
