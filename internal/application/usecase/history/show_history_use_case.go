package history

import (
	"context"
	"sort"

	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/service"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/repository"
)

// ShowHistoryUseCase reads the history of the current branch
type ShowHistoryUseCase struct {
	branches *service.BranchContextService
	repo     repository.HistoryRepository
}

// NewShowHistoryUseCase creates a new ShowHistoryUseCase
func NewShowHistoryUseCase(branches *service.BranchContextService, repo repository.HistoryRepository) *ShowHistoryUseCase {
	return &ShowHistoryUseCase{
		branches: branches,
		repo:     repo,
	}
}

// Execute returns the current branch's history. A missing branch or disabled
// storage yields an empty view rather than an error.
func (u *ShowHistoryUseCase) Execute(ctx context.Context, roots []string) (*dto.HistoryView, error) {
	available := u.repo.Available()
	if len(roots) == 0 {
		view := toView("", "", available, nil)
		return &view, nil
	}

	branchName := u.branches.CurrentBranch(ctx, roots[0])
	key, ok := history.BuildBranchKey(roots[0], branchName)
	if !ok || !available {
		view := toView(branchName, key, available, nil)
		return &view, nil
	}

	log, err := u.repo.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	view := toView(branchName, key, available, log)
	return &view, nil
}

// ListBranches returns every branch key with stored history
func (u *ShowHistoryUseCase) ListBranches(ctx context.Context) (*dto.BranchIndexView, error) {
	view := &dto.BranchIndexView{Available: u.repo.Available(), Branches: []dto.BranchHistory{}}
	if !view.Available {
		return view, nil
	}

	keys, err := u.repo.BranchKeys(ctx)
	if err != nil {
		return nil, err
	}
	for key, lastUpdated := range keys {
		view.Branches = append(view.Branches, dto.BranchHistory{BranchKey: key, LastUpdated: lastUpdated})
	}
	// Timestamps share one fixed-width UTC layout, so string order is time order.
	sort.Slice(view.Branches, func(i, j int) bool {
		a, b := view.Branches[i], view.Branches[j]
		if a.LastUpdated != b.LastUpdated {
			return a.LastUpdated > b.LastUpdated
		}
		return a.BranchKey < b.BranchKey
	})
	return view, nil
}
