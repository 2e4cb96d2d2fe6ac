package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/specstatus/internal/adapter/gateway/filesystem"
	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/branch"
	domainservice "github.com/YoshitsuguKoike/specstatus/internal/domain/service"
	"github.com/YoshitsuguKoike/specstatus/internal/testutil"
)

func newBranchContext(fs afero.Fs, provider *testutil.StaticBranchProvider) *BranchContextService {
	if provider == nil {
		return NewBranchContextService(filesystem.NewAferoFileAccessor(fs), nil, domainservice.NewBranchMatcherService(), app.NopLogger())
	}
	return NewBranchContextService(filesystem.NewAferoFileAccessor(fs), provider, domainservice.NewBranchMatcherService(), app.NopLogger())
}

func TestDiscoverFeatureFolders(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := testutil.NewTestWorkspaceOn(t, fs, "/a")
	a.Feature("001-first")
	a.Feature("002-second")
	a.Write("specs/README.md", "not a folder")
	testutil.NewTestWorkspaceOn(t, fs, "/b").Feature("003-third")
	testutil.NewTestWorkspaceOn(t, fs, "/c")

	folders := newBranchContext(fs, nil).DiscoverFeatureFolders([]string{"/a", "/b", "/c"})

	var names []string
	for _, f := range folders {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"001-first", "002-second", "003-third"}, names)
	for _, f := range folders {
		if f.Name == "003-third" {
			assert.Equal(t, filepath.Join("/b", "specs", "003-third"), f.Location)
		}
	}
}

func TestCurrentBranch(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("no provider", func(t *testing.T) {
		assert.Equal(t, "", newBranchContext(fs, nil).CurrentBranch(context.Background(), "/a"))
	})

	t.Run("provider error degrades to empty", func(t *testing.T) {
		provider := testutil.NewStaticBranchProvider("main")
		provider.Err = errors.New("git exploded")
		assert.Equal(t, "", newBranchContext(fs, provider).CurrentBranch(context.Background(), "/a"))
	})

	t.Run("per root", func(t *testing.T) {
		provider := testutil.NewStaticBranchProvider("main")
		provider.Set("/b", "001-first")
		svc := newBranchContext(fs, provider)
		assert.Equal(t, "main", svc.CurrentBranch(context.Background(), "/a"))
		assert.Equal(t, "001-first", svc.CurrentBranch(context.Background(), "/b"))
	})
}

func TestResolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.NewTestWorkspaceOn(t, fs, "/a").Feature("001-first")
	testutil.NewTestWorkspaceOn(t, fs, "/b").Feature("001-first")
	testutil.NewTestWorkspaceOn(t, fs, "/b").Feature("002-second")

	tests := []struct {
		name       string
		roots      []string
		branchName string
		wantStatus branch.MatchStatus
		wantFolder string
	}{
		{"no roots", nil, "001-first", branch.MatchStatusMissing, ""},
		{"matched", []string{"/b"}, "002-second", branch.MatchStatusMatched, filepath.Join("/b", "specs", "002-second")},
		{"ambiguous across roots", []string{"/a", "/b"}, "001-first", branch.MatchStatusAmbiguous, ""},
		{"no folder for branch", []string{"/a"}, "main", branch.MatchStatusMissing, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newBranchContext(fs, testutil.NewStaticBranchProvider(tt.branchName))
			res := svc.Resolve(context.Background(), tt.roots)

			assert.Equal(t, tt.wantStatus, res.Context.MatchStatus)
			if tt.wantFolder == "" {
				assert.Nil(t, res.FeatureFolder)
				return
			}
			require.NotNil(t, res.FeatureFolder)
			assert.Equal(t, tt.wantFolder, res.FeatureFolder.Location)
			assert.Equal(t, tt.branchName, res.Context.FeatureFolderName)
		})
	}
}
