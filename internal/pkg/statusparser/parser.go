// Package statusparser detects completion signals in spec-kit markdown artifacts:
// open-question markers, template placeholders, checklists and task progress.
package statusparser

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ChecklistStatus counts checklist items found in a document
type ChecklistStatus struct {
	Total   int `json:"total" yaml:"total"`
	Checked int `json:"checked" yaml:"checked"`
}

// TaskProgress is the projection of a tasks checklist used by the implement step
type TaskProgress struct {
	Completed int     `json:"completed" yaml:"completed"`
	Total     int     `json:"total" yaml:"total"`
	Ratio     float64 `json:"ratio" yaml:"ratio"`
	Text      string  `json:"text" yaml:"text"`
	Bar       string  `json:"bar" yaml:"bar"`
}

// IsComplete reports whether every task is checked. An empty task list is never complete.
func (p TaskProgress) IsComplete() bool {
	return p.Total > 0 && p.Completed >= p.Total
}

// AdjustmentMatch is a located marker or placeholder occurrence
type AdjustmentMatch struct {
	Label  string
	Line   int // 1-based
	Column int // 1-based, in runes
}

type marker struct {
	label string
	regex *regexp.Regexp
}

const needsClarificationLabel = "NEEDS CLARIFICATION"

// Order matters: adjustments are reported per line in this order.
var adjustmentMarkers = []marker{
	{label: needsClarificationLabel, regex: regexp.MustCompile(`(?i)\bNEEDS CLARIFICATION\b`)},
	{label: "TODO", regex: regexp.MustCompile(`(?i)\bTODO\b`)},
	{label: "TBD", regex: regexp.MustCompile(`(?i)\bTBD\b`)},
	{label: "TKTK", regex: regexp.MustCompile(`(?i)\bTKTK\b`)},
}

var placeholderTokens = []string{
	"[FEATURE NAME]",
	"[DATE]",
	"[###-feature-name]",
}

var (
	lineSplitter                = regexp.MustCompile(`\r?\n`)
	needsClarificationLine      = regexp.MustCompile(`(?i)\[NEEDS CLARIFICATION:`)
	needsClarificationExclusion = regexp.MustCompile(`(?i)No \[NEEDS CLARIFICATION\] markers remain`)
	checklistItem               = regexp.MustCompile(`- \[( |x|X)\]`)
)

const progressBarWidth = 10

func splitLines(text string) []string {
	return lineSplitter.Split(text, -1)
}

// ContainsOpenQuestionMarkers reports whether any line carries a TODO-style marker.
// Lines announcing that no clarification markers remain are skipped entirely.
func ContainsOpenQuestionMarkers(text string) bool {
	for _, line := range splitLines(text) {
		if needsClarificationExclusion.MatchString(line) {
			continue
		}
		for _, m := range adjustmentMarkers {
			if m.regex.MatchString(line) {
				return true
			}
		}
	}
	return false
}

// ContainsPlaceholderTokens reports whether the text still holds template placeholders
// or an inline clarification request.
func ContainsPlaceholderTokens(text string) bool {
	for _, token := range placeholderTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return needsClarificationLine.MatchString(text)
}

// ParseChecklist counts "- [ ]" / "- [x]" items anywhere in the text
func ParseChecklist(text string) ChecklistStatus {
	var status ChecklistStatus
	for _, match := range checklistItem.FindAllStringSubmatch(text, -1) {
		status.Total++
		if strings.EqualFold(match[1], "x") {
			status.Checked++
		}
	}
	return status
}

// IsChecklistComplete is true iff the checklist has items and all of them are checked
func IsChecklistComplete(text string) bool {
	status := ParseChecklist(text)
	return status.Total > 0 && status.Checked == status.Total
}

// ParseTaskProgress builds the task progress projection from a tasks document
func ParseTaskProgress(text string) TaskProgress {
	status := ParseChecklist(text)
	return NewTaskProgress(status.Checked, status.Total)
}

// NewTaskProgress derives ratio, text and progress bar from raw counts
func NewTaskProgress(completed, total int) TaskProgress {
	ratio := 0.0
	if total > 0 {
		ratio = float64(completed) / float64(total)
	}
	filled := int(math.Round(ratio * progressBarWidth))
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	if filled < 0 {
		filled = 0
	}
	return TaskProgress{
		Completed: completed,
		Total:     total,
		Ratio:     ratio,
		Text:      fmt.Sprintf("Tasks %d/%d", completed, total),
		Bar:       "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressBarWidth-filled) + "]",
	}
}

// ExtractAdjustments locates every marker and placeholder occurrence.
// Within a line, marker hits come first (in marker order), then placeholder hits
// (in token order); hits are not merged by column.
func ExtractAdjustments(text string) []AdjustmentMatch {
	var matches []AdjustmentMatch

	for i, line := range splitLines(text) {
		lineNumber := i + 1

		for _, m := range adjustmentMarkers {
			if m.label == needsClarificationLabel && needsClarificationExclusion.MatchString(line) {
				continue
			}
			for _, loc := range m.regex.FindAllStringIndex(line, -1) {
				matches = append(matches, AdjustmentMatch{
					Label:  m.label,
					Line:   lineNumber,
					Column: runeColumn(line, loc[0]),
				})
			}
		}

		for _, token := range placeholderTokens {
			offset := 0
			for {
				idx := strings.Index(line[offset:], token)
				if idx < 0 {
					break
				}
				start := offset + idx
				matches = append(matches, AdjustmentMatch{
					Label:  token,
					Line:   lineNumber,
					Column: runeColumn(line, start),
				})
				offset = start + len(token)
			}
		}
	}

	return matches
}

// runeColumn is 1-based and counts runes, so characters outside the BMP are one column
func runeColumn(line string, byteOffset int) int {
	return utf8.RuneCountInString(line[:byteOffset]) + 1
}
