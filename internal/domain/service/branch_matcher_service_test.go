package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
)

func folder(name, location string) branch.SpecFolder {
	return branch.SpecFolder{Name: name, Location: location, ModTime: time.Unix(1, 0)}
}

func TestBranchMatcherService_Resolve(t *testing.T) {
	svc := NewBranchMatcherService()

	tests := []struct {
		name        string
		branchName  string
		folders     []branch.SpecFolder
		wantStatus  branch.MatchStatus
		wantFeature string
	}{
		{
			name:        "exact match",
			branchName:  "001-first",
			folders:     []branch.SpecFolder{folder("001-first", "/tmp/specs/001-first"), folder("002-second", "/tmp/specs/002-second")},
			wantStatus:  branch.MatchStatusMatched,
			wantFeature: "001-first",
		},
		{
			name:       "branch not found",
			branchName: "003-missing",
			folders:    []branch.SpecFolder{folder("001-first", "/tmp/specs/001-first")},
			wantStatus: branch.MatchStatusMissing,
		},
		{
			name:       "prefix does not match",
			branchName: "001-first",
			folders:    []branch.SpecFolder{folder("001-first-extra", "/tmp/specs/001-first-extra")},
			wantStatus: branch.MatchStatusMissing,
		},
		{
			name:       "duplicate names are ambiguous",
			branchName: "001-first",
			folders:    []branch.SpecFolder{folder("001-first", "/tmp/specs/001-first"), folder("001-first", "/tmp/other/specs/001-first")},
			wantStatus: branch.MatchStatusAmbiguous,
		},
		{
			name:       "no branch",
			branchName: "",
			folders:    []branch.SpecFolder{folder("001-first", "/tmp/specs/001-first")},
			wantStatus: branch.MatchStatusMissing,
		},
		{
			name:        "decomposed folder name matches composed branch",
			branchName:  "001-caf\u00e9",
			folders:     []branch.SpecFolder{folder("001-cafe\u0301", "/tmp/specs/001-cafe")},
			wantStatus:  branch.MatchStatusMatched,
			wantFeature: "001-cafe\u0301",
		},
		{
			name:        "exact name wins over a decomposed twin",
			branchName:  "001-caf\u00e9",
			folders:     []branch.SpecFolder{folder("001-cafe\u0301", "/tmp/a/specs/001-cafe"), folder("001-caf\u00e9", "/tmp/b/specs/001-cafe")},
			wantStatus:  branch.MatchStatusMatched,
			wantFeature: "001-caf\u00e9",
		},
		{
			name:       "composed folder does not match decomposed branch",
			branchName: "001-cafe\u0301",
			folders:    []branch.SpecFolder{folder("001-caf\u00e9", "/tmp/specs/001-cafe")},
			wantStatus: branch.MatchStatusMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Resolve(tt.branchName, tt.folders)

			assert.Equal(t, tt.wantStatus, res.Context.MatchStatus)
			assert.Equal(t, tt.branchName, res.Context.BranchName)
			assert.Equal(t, tt.wantFeature, res.Context.FeatureFolderName)
			if tt.wantStatus == branch.MatchStatusMatched {
				require.NotNil(t, res.FeatureFolder)
				assert.Equal(t, tt.wantFeature, res.FeatureFolder.Name)
			} else {
				assert.Nil(t, res.FeatureFolder)
			}
		})
	}
}
