package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/service"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/repository"
)

// RecordStepUseCase appends a session-log event marking a step as done on the current branch
type RecordStepUseCase struct {
	branches *service.BranchContextService
	repo     repository.HistoryRepository
	logger   app.Logger
	now      func() time.Time
}

// NewRecordStepUseCase creates a new RecordStepUseCase
func NewRecordStepUseCase(
	branches *service.BranchContextService,
	repo repository.HistoryRepository,
	logger app.Logger,
	now func() time.Time,
) *RecordStepUseCase {
	if now == nil {
		now = time.Now
	}
	return &RecordStepUseCase{
		branches: branches,
		repo:     repo,
		logger:   logger,
		now:      now,
	}
}

// Execute records input.StepID for the branch checked out at the primary root
func (u *RecordStepUseCase) Execute(ctx context.Context, roots []string, input dto.RecordStepInput) (*dto.RecordStepOutput, error) {
	def, err := workflow.LookupDefinition(workflow.StepID(strings.TrimSpace(input.StepID)))
	if err != nil {
		return nil, err
	}

	if !u.repo.Available() {
		return nil, history.ErrHistoryUnavailable
	}

	if len(roots) == 0 {
		return nil, history.ErrNoBranchKey
	}
	branchName := u.branches.CurrentBranch(ctx, roots[0])
	key, ok := history.BuildBranchKey(roots[0], branchName)
	if !ok {
		return nil, history.ErrNoBranchKey
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = def.Label
	}

	t := u.now()
	event := history.Event{
		ID:        history.NewEventID(t),
		BranchKey: key,
		Type:      history.EventTypeManual,
		StepID:    def.ID.String(),
		Label:     label,
		Timestamp: history.FormatTimestamp(t),
		Source:    history.SourceSessionLog,
	}

	log, err := u.repo.Append(ctx, key, []history.Event{event})
	if err != nil {
		return nil, fmt.Errorf("failed to record step %s: %w", def.ID, err)
	}
	if log == nil {
		return nil, history.ErrHistoryUnavailable
	}

	appended := containsEvent(log.Events, event.ID)
	if !appended {
		u.logger.Info("step %s already recorded within %s, skipped", def.ID, history.DuplicateWindow)
	}

	return &dto.RecordStepOutput{
		Event:    event,
		Appended: appended,
		Log:      toView(branchName, key, true, log),
	}, nil
}

func containsEvent(events []history.Event, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func toView(branchName, key string, available bool, log *history.Log) dto.HistoryView {
	view := dto.HistoryView{
		BranchName: branchName,
		BranchKey:  key,
		Available:  available,
		Events:     []history.Event{},
	}
	if log != nil {
		view.Events = log.Events
		view.LastUpdated = log.LastUpdated
	}
	return view
}
