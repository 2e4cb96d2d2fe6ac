package statusparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsOpenQuestionMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "todo marker", text: "TODO: add details", want: true},
		{name: "lowercase tbd", text: "owner is tbd", want: true},
		{name: "tktk on second line", text: "Intro\nTKTK numbers", want: true},
		{name: "clean text", text: "All good here.", want: false},
		{name: "completion line excluded", text: "No [NEEDS CLARIFICATION] markers remain", want: false},
		{name: "completion line excludes other markers on same line", text: "No [NEEDS CLARIFICATION] markers remain TODO", want: false},
		{name: "marker on a different line still counts", text: "No [NEEDS CLARIFICATION] markers remain\nTODO later", want: true},
		{name: "word boundary", text: "TODOS and mastodon", want: false},
		{name: "crlf lines", text: "fine\r\nNEEDS CLARIFICATION here\r\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsOpenQuestionMarkers(tt.text))
		})
	}
}

func TestContainsPlaceholderTokens(t *testing.T) {
	assert.True(t, ContainsPlaceholderTokens("[FEATURE NAME]"))
	assert.True(t, ContainsPlaceholderTokens("Created: [DATE]"))
	assert.True(t, ContainsPlaceholderTokens("Branch: [###-feature-name]"))
	assert.True(t, ContainsPlaceholderTokens("[NEEDS CLARIFICATION: add detail]"))
	assert.True(t, ContainsPlaceholderTokens("[needs clarification: lower]"))
	assert.False(t, ContainsPlaceholderTokens("Filled content."))
	assert.False(t, ContainsPlaceholderTokens("No [NEEDS CLARIFICATION] markers remain"))
}

func TestParseChecklist(t *testing.T) {
	checklist := "- [x] One\n- [ ] Two\n- [X] Three\n"
	parsed := ParseChecklist(checklist)

	assert.Equal(t, 3, parsed.Total)
	assert.Equal(t, 2, parsed.Checked)
	assert.False(t, IsChecklistComplete(checklist))
	assert.True(t, IsChecklistComplete("- [x] Done\n"))
}

func TestParseChecklist_CheckedNeverExceedsTotal(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"- [x]",
		"- [x] a - [ ] b - [X] c",
		"-[x] no space\n- [y] wrong mark\n- [ ] ok",
		"  - [x] indented\n\t- [ ] tabbed",
	}
	for _, in := range inputs {
		parsed := ParseChecklist(in)
		assert.LessOrEqual(t, parsed.Checked, parsed.Total, "input %q", in)
	}
}

func TestIsChecklistComplete_Empty(t *testing.T) {
	assert.False(t, IsChecklistComplete(""))
	assert.False(t, IsChecklistComplete("no items at all"))
}

func TestParseTaskProgress(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		completed int
		total     int
		ratio     float64
		bar       string
		label     string
	}{
		{name: "no tasks", text: "", completed: 0, total: 0, ratio: 0, bar: "[----------]", label: "Tasks 0/0"},
		{name: "all done", text: "- [x] a\n- [X] b\n", completed: 2, total: 2, ratio: 1, bar: "[##########]", label: "Tasks 2/2"},
		{name: "one of five", text: "- [x] a\n- [ ] b\n- [ ] c\n- [ ] d\n- [ ] e\n", completed: 1, total: 5, ratio: 0.2, bar: "[##--------]", label: "Tasks 1/5"},
		{name: "rounds down below half", text: "- [x] a\n- [ ] b\n- [ ] c\n- [ ] d\n- [ ] e\n- [ ] f\n- [ ] g\n- [ ] h\n", completed: 1, total: 8, ratio: 0.125, bar: "[#---------]", label: "Tasks 1/8"},
		{name: "rounds half up", text: "- [x] a\n- [ ] b\n- [ ] c\n- [ ] d\n", completed: 1, total: 4, ratio: 0.25, bar: "[###-------]", label: "Tasks 1/4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := ParseTaskProgress(tt.text)
			assert.Equal(t, tt.completed, progress.Completed)
			assert.Equal(t, tt.total, progress.Total)
			assert.InDelta(t, tt.ratio, progress.Ratio, 1e-9)
			assert.Equal(t, tt.bar, progress.Bar)
			assert.Equal(t, tt.label, progress.Text)
		})
	}
}

func TestTaskProgress_IsComplete(t *testing.T) {
	assert.False(t, NewTaskProgress(0, 0).IsComplete())
	assert.False(t, NewTaskProgress(2, 3).IsComplete())
	assert.True(t, NewTaskProgress(3, 3).IsComplete())
}

func TestExtractAdjustments(t *testing.T) {
	text := "TODO: one\nSomething [FEATURE NAME]\nTBD and TKTK\n"

	adjustments := ExtractAdjustments(text)

	assert.Equal(t, []AdjustmentMatch{
		{Label: "TODO", Line: 1, Column: 1},
		{Label: "[FEATURE NAME]", Line: 2, Column: 11},
		{Label: "TBD", Line: 3, Column: 1},
		{Label: "TKTK", Line: 3, Column: 9},
	}, adjustments)
}

func TestExtractAdjustments_MarkersBeforePlaceholders(t *testing.T) {
	// The placeholder sits left of the marker but is still reported after it.
	adjustments := ExtractAdjustments("[DATE] then TODO and todo")

	assert.Equal(t, []AdjustmentMatch{
		{Label: "TODO", Line: 1, Column: 13},
		{Label: "TODO", Line: 1, Column: 22},
		{Label: "[DATE]", Line: 1, Column: 1},
	}, adjustments)
}

func TestExtractAdjustments_CompletionLineSkipsOnlyClarification(t *testing.T) {
	adjustments := ExtractAdjustments("No [NEEDS CLARIFICATION] markers remain TBD")

	assert.Equal(t, []AdjustmentMatch{
		{Label: "TBD", Line: 1, Column: 41},
	}, adjustments)
}

func TestExtractAdjustments_RepeatedPlaceholder(t *testing.T) {
	adjustments := ExtractAdjustments("[DATE][DATE]")

	assert.Equal(t, []AdjustmentMatch{
		{Label: "[DATE]", Line: 1, Column: 1},
		{Label: "[DATE]", Line: 1, Column: 7},
	}, adjustments)
}

func TestExtractAdjustments_RuneColumns(t *testing.T) {
	adjustments := ExtractAdjustments("仕様 TODO")

	assert.Equal(t, []AdjustmentMatch{
		{Label: "TODO", Line: 1, Column: 4},
	}, adjustments)
}

func TestExtractAdjustments_AstralRunesCountOnce(t *testing.T) {
	// U+1F6A7 is one rune but two UTF-16 code units; columns count runes.
	adjustments := ExtractAdjustments("\U0001F6A7 TODO [DATE]")

	assert.Equal(t, []AdjustmentMatch{
		{Label: "TODO", Line: 1, Column: 3},
		{Label: "[DATE]", Line: 1, Column: 8},
	}, adjustments)
}

func TestExtractAdjustments_Empty(t *testing.T) {
	assert.Empty(t, ExtractAdjustments(""))
	assert.Empty(t, ExtractAdjustments("clean\ncontent\n"))
}
