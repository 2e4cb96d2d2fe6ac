package branch

import (
	"encoding/json"
	"time"
)

// MatchStatus describes how the current branch relates to the feature folders
type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusMissing   MatchStatus = "missing"
	MatchStatusAmbiguous MatchStatus = "ambiguous"
)

// Context is the branch/feature pairing for one snapshot.
// Empty names mean "none" and are encoded as null.
type Context struct {
	BranchName        string      `json:"branchName" yaml:"branchName"`
	FeatureFolderName string      `json:"featureFolderName" yaml:"featureFolderName"`
	MatchStatus       MatchStatus `json:"matchStatus" yaml:"matchStatus"`
}

type contextDoc struct {
	BranchName        *string     `json:"branchName" yaml:"branchName"`
	FeatureFolderName *string     `json:"featureFolderName" yaml:"featureFolderName"`
	MatchStatus       MatchStatus `json:"matchStatus" yaml:"matchStatus"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c Context) doc() contextDoc {
	return contextDoc{
		BranchName:        nullable(c.BranchName),
		FeatureFolderName: nullable(c.FeatureFolderName),
		MatchStatus:       c.MatchStatus,
	}
}

// MarshalJSON implements json.Marshaler
func (c Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.doc())
}

// MarshalYAML implements yaml.Marshaler
func (c Context) MarshalYAML() (interface{}, error) {
	return c.doc(), nil
}

// IsMatched reports whether exactly one feature folder was selected
func (c Context) IsMatched() bool {
	return c.MatchStatus == MatchStatusMatched
}

// Unmatched builds a context with no feature folder
func Unmatched(branchName string, status MatchStatus) Context {
	return Context{BranchName: branchName, MatchStatus: status}
}

// SpecFolder is a candidate feature folder discovered under a specs root
type SpecFolder struct {
	Name     string
	Location string
	ModTime  time.Time
}

// Resolution is the matcher output: the context plus the selected folder, if any
type Resolution struct {
	Context       Context
	FeatureFolder *SpecFolder
}
