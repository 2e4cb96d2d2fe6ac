package service

import (
	"golang.org/x/text/unicode/norm"

	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
)

// BranchMatcherService pairs the current branch with a feature folder.
// Matching is exact name equality; prefixes never match.
type BranchMatcherService struct{}

// NewBranchMatcherService creates a new branch matcher
func NewBranchMatcherService() *BranchMatcherService {
	return &BranchMatcherService{}
}

// Resolve selects the feature folder for branchName among folders.
// Zero matches is "missing", more than one is "ambiguous" and selects nothing.
func (s *BranchMatcherService) Resolve(branchName string, folders []branch.SpecFolder) branch.Resolution {
	var matches []branch.SpecFolder
	if branchName != "" {
		for _, folder := range folders {
			if folder.Name == branchName {
				matches = append(matches, folder)
			}
		}
		if len(matches) == 0 {
			matches = decomposedMatches(branchName, folders)
		}
	}

	switch len(matches) {
	case 1:
		selected := matches[0]
		return branch.Resolution{
			Context: branch.Context{
				BranchName:        branchName,
				FeatureFolderName: selected.Name,
				MatchStatus:       branch.MatchStatusMatched,
			},
			FeatureFolder: &selected,
		}
	case 0:
		return branch.Resolution{Context: branch.Unmatched(branchName, branch.MatchStatusMissing)}
	default:
		return branch.Resolution{Context: branch.Unmatched(branchName, branch.MatchStatusAmbiguous)}
	}
}

// decomposedMatches covers folders whose names the filesystem returned in
// decomposed form (HFS+ and some macOS tools store NFD) while git keeps the
// branch name as typed. Only non-NFC folder names are recomposed, so two
// distinct names that are already NFC never collapse into one.
func decomposedMatches(branchName string, folders []branch.SpecFolder) []branch.SpecFolder {
	var matches []branch.SpecFolder
	for _, folder := range folders {
		if norm.NFC.IsNormalString(folder.Name) {
			continue
		}
		if norm.NFC.String(folder.Name) == branchName {
			matches = append(matches, folder)
		}
	}
	return matches
}
