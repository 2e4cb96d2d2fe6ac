package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

type textStyles struct {
	heading  lipgloss.Style
	good     lipgloss.Style
	current  lipgloss.Style
	warn     lipgloss.Style
	bad      lipgloss.Style
	muted    lipgloss.Style
	emphasis lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	return textStyles{
		heading:  r.NewStyle().Bold(true).Underline(true),
		good:     r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		current:  r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		warn:     r.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
		bad:      r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#999999")),
		emphasis: r.NewStyle().Bold(true),
	}
}

// TextPresenter renders human-readable status output.
// Colours are dropped automatically when output is not a terminal.
type TextPresenter struct {
	output io.Writer
	styles textStyles
}

// NewTextPresenter creates a new text presenter
func NewTextPresenter(output io.Writer) *TextPresenter {
	return &TextPresenter{
		output: output,
		styles: newTextStyles(lipgloss.NewRenderer(output)),
	}
}

// PresentSnapshot renders the branch, workflow, artifacts and recommendation
func (p *TextPresenter) PresentSnapshot(s *dto.StatusSnapshot) error {
	st := p.styles
	var b strings.Builder

	fmt.Fprintf(&b, "Branch: %s\n", p.branchLine(s.BranchContext))

	if !s.IsInitialized() {
		fmt.Fprintf(&b, "%s %s\n", st.warn.Render("!"), s.InitializationState.Message)
		_, err := io.WriteString(p.output, b.String())
		return err
	}

	fmt.Fprintf(&b, "Source: %s  Updated: %s\n", s.StatusSource, st.muted.Render(s.LastUpdated))

	if len(s.Workflow) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Workflow"))
		for _, step := range s.Workflow {
			fmt.Fprintf(&b, "  %s %d. %s", p.stepMarker(step.Status), step.Order, step.Label)
			if step.Status == workflow.StepStatusCurrent {
				fmt.Fprintf(&b, " %s", st.current.Render("(current)"))
			}
			if step.Progress != nil && step.Progress.Total > 0 {
				fmt.Fprintf(&b, "  %s %s", step.Progress.Bar, step.Progress.Text)
			}
			b.WriteString("\n")
		}
	}

	if len(s.Artifacts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Artifacts"))
		for _, a := range s.Artifacts {
			fmt.Fprintf(&b, "  %s %s", p.statusBadge(a.Status), a.Label)
			if a.AdjustmentCount > 0 {
				fmt.Fprintf(&b, " %s", st.warn.Render(fmt.Sprintf("(%d to adjust)", a.AdjustmentCount)))
			}
			fmt.Fprintf(&b, "\n      %s\n", st.muted.Render(a.Location))
			for _, adj := range a.Adjustments {
				fmt.Fprintf(&b, "      - %s %s:%d:%d\n", adj.Label, adj.FilePath, adj.Line, adj.Column)
			}
		}
	}

	if s.Recommendation != nil {
		r := s.Recommendation
		fmt.Fprintf(&b, "\n%s %s: %s (%s)\n", st.emphasis.Render("Next:"), r.StepLabel, r.ArtifactLabel, r.Reason)
	} else if len(s.Artifacts) > 0 {
		fmt.Fprintf(&b, "\n%s nothing to do\n", st.good.Render("✓"))
	}

	_, err := io.WriteString(p.output, b.String())
	return err
}

// PresentHistory renders the event list of the current branch
func (p *TextPresenter) PresentHistory(v *dto.HistoryView) error {
	st := p.styles
	var b strings.Builder

	switch {
	case !v.Available:
		fmt.Fprintf(&b, "%s workflow history is disabled\n", st.warn.Render("!"))
	case v.BranchKey == "":
		fmt.Fprintf(&b, "%s no branch checked out\n", st.warn.Render("!"))
	case len(v.Events) == 0:
		fmt.Fprintf(&b, "No history for %s\n", v.BranchName)
	default:
		fmt.Fprintf(&b, "History for %s (%d events, updated %s)\n", v.BranchName, len(v.Events), v.LastUpdated)
		for _, e := range v.Events {
			fmt.Fprintf(&b, "  %s  %-13s %-12s %s %s\n",
				e.Timestamp, e.Type, e.StepID, e.Label, st.muted.Render("["+string(e.Source)+"]"))
		}
	}

	_, err := io.WriteString(p.output, b.String())
	return err
}

// PresentBranches renders one line per branch with stored history
func (p *TextPresenter) PresentBranches(v *dto.BranchIndexView) error {
	st := p.styles
	var b strings.Builder

	switch {
	case !v.Available:
		fmt.Fprintf(&b, "%s workflow history is disabled\n", st.warn.Render("!"))
	case len(v.Branches) == 0:
		b.WriteString("No branch history recorded\n")
	default:
		fmt.Fprintf(&b, "%s\n", st.heading.Render(fmt.Sprintf("Branches (%d)", len(v.Branches))))
		for _, e := range v.Branches {
			fmt.Fprintf(&b, "  %s  %s\n", e.LastUpdated, e.BranchKey)
		}
	}

	_, err := io.WriteString(p.output, b.String())
	return err
}

// PresentRecorded reports a manual step recording
func (p *TextPresenter) PresentRecorded(out *dto.RecordStepOutput) error {
	if out.Appended {
		fmt.Fprintf(p.output, "%s Recorded %s on %s at %s\n",
			p.styles.good.Render("✓"), out.Event.StepID, out.Log.BranchName, out.Event.Timestamp)
		return nil
	}
	fmt.Fprintf(p.output, "%s %s was already recorded on %s less than a minute ago\n",
		p.styles.muted.Render("·"), out.Event.StepID, out.Log.BranchName)
	return nil
}

// PresentManifest renders the step table and the expected artifacts
func (p *TextPresenter) PresentManifest(entries []artifact.Expectation, steps []workflow.Definition) error {
	st := p.styles
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", st.heading.Render("Steps"))
	for _, def := range steps {
		required := workflow.RequiredArtifacts(def.ID)
		fmt.Fprintf(&b, "  %d. %-13s %s\n", def.Order, def.ID, strings.Join(required, ", "))
	}

	fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Artifacts"))
	for _, e := range entries {
		fmt.Fprintf(&b, "  %-23s %-7s %-14s %s", e.ID, e.Kind, e.Source, e.RelativePath)
		if e.ChecklistRelativePath != "" {
			fmt.Fprintf(&b, " %s", st.muted.Render("(checklist "+e.ChecklistRelativePath+")"))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(p.output, b.String())
	return err
}

// PresentError presents an error
func (p *TextPresenter) PresentError(err error) error {
	_, werr := fmt.Fprintf(p.output, "%s Error: %v\n", p.styles.bad.Render("✗"), err)
	return werr
}

func (p *TextPresenter) branchLine(c branch.Context) string {
	name := c.BranchName
	if name == "" {
		name = "(none)"
	}
	switch c.MatchStatus {
	case branch.MatchStatusMatched:
		return fmt.Sprintf("%s %s", name, p.styles.good.Render("→ specs/"+c.FeatureFolderName))
	case branch.MatchStatusAmbiguous:
		return fmt.Sprintf("%s %s", name, p.styles.warn.Render("(ambiguous feature folder)"))
	default:
		return fmt.Sprintf("%s %s", name, p.styles.muted.Render("(no feature folder)"))
	}
}

func (p *TextPresenter) stepMarker(status workflow.StepStatus) string {
	switch status {
	case workflow.StepStatusComplete:
		return p.styles.good.Render("✓")
	case workflow.StepStatusCurrent:
		return p.styles.current.Render("▶")
	case workflow.StepStatusIncomplete:
		return p.styles.bad.Render("✗")
	default:
		return p.styles.muted.Render("·")
	}
}

func (p *TextPresenter) statusBadge(status artifact.Status) string {
	label := fmt.Sprintf("%-14s", status)
	switch status {
	case artifact.StatusValidated, artifact.StatusComplete:
		return p.styles.good.Render(label)
	case artifact.StatusOpenQuestions:
		return p.styles.warn.Render(label)
	default:
		return p.styles.bad.Render(label)
	}
}

var _ output.Presenter = (*TextPresenter)(nil)
