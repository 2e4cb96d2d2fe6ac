package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
)

// Fixture content for spec-kit artifacts
const (
	CleanDoc        = "# Document\n\nAll settled.\n"
	OpenQuestionDoc = "# Document\n\n- [NEEDS CLARIFICATION] who owns this?\n"
	CheckedList     = "- [x] one\n- [X] two\n"
	UncheckedList   = "- [x] one\n- [ ] two\n"
)

// Workspace builds a spec-kit tree on an afero filesystem
type Workspace struct {
	t    *testing.T
	Fs   afero.Fs
	Root string
}

// NewTestWorkspace creates an empty workspace rooted at root on a fresh MemMapFs
func NewTestWorkspace(t *testing.T, root string) *Workspace {
	t.Helper()
	return NewTestWorkspaceOn(t, afero.NewMemMapFs(), root)
}

// NewTestWorkspaceOn creates a workspace on an existing filesystem
func NewTestWorkspaceOn(t *testing.T, fs afero.Fs, root string) *Workspace {
	t.Helper()
	if err := fs.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("Failed to create workspace %s: %v", root, err)
	}
	return &Workspace{t: t, Fs: fs, Root: root}
}

// Init creates .specify/memory, marking the workspace as initialized
func (w *Workspace) Init() *Workspace {
	w.t.Helper()
	w.Mkdir(".specify/memory")
	return w
}

// Constitution writes .specify/memory/constitution.md
func (w *Workspace) Constitution(content string) *Workspace {
	w.t.Helper()
	return w.Write(".specify/memory/constitution.md", content)
}

// Feature returns a builder for specs/<name>, creating the folder
func (w *Workspace) Feature(name string) *Feature {
	w.t.Helper()
	w.Mkdir(filepath.Join("specs", name))
	return &Feature{ws: w, dir: filepath.Join("specs", name)}
}

// Write writes content to rel under the root, creating parents
func (w *Workspace) Write(rel, content string) *Workspace {
	w.t.Helper()
	path := filepath.Join(w.Root, rel)
	if err := w.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(w.Fs, path, []byte(content), 0o644); err != nil {
		w.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return w
}

// Mkdir creates rel under the root
func (w *Workspace) Mkdir(rel string) *Workspace {
	w.t.Helper()
	if err := w.Fs.MkdirAll(filepath.Join(w.Root, rel), 0o755); err != nil {
		w.t.Fatalf("Failed to create directory %s: %v", rel, err)
	}
	return w
}

// Path joins rel onto the root
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Root, rel)
}

// Feature builds the artifacts of one feature folder
type Feature struct {
	ws  *Workspace
	dir string
}

// Dir returns the absolute feature folder location
func (f *Feature) Dir() string {
	return f.ws.Path(f.dir)
}

// Write writes rel inside the feature folder
func (f *Feature) Write(rel, content string) *Feature {
	f.ws.t.Helper()
	f.ws.Write(filepath.Join(f.dir, rel), content)
	return f
}

// Spec writes spec.md and checklists/requirements.md
func (f *Feature) Spec(spec, checklist string) *Feature {
	f.ws.t.Helper()
	return f.Write("spec.md", spec).Write("checklists/requirements.md", checklist)
}

// Plan writes plan.md, research.md, data-model.md and a contracts folder
func (f *Feature) Plan(content string) *Feature {
	f.ws.t.Helper()
	f.Write("plan.md", content).Write("research.md", content).Write("data-model.md", content)
	f.ws.Mkdir(filepath.Join(f.dir, "contracts"))
	return f
}

// Tasks writes tasks.md
func (f *Feature) Tasks(content string) *Feature {
	f.ws.t.Helper()
	return f.Write("tasks.md", content)
}

// Quickstart writes quickstart.md
func (f *Feature) Quickstart(content string) *Feature {
	f.ws.t.Helper()
	return f.Write("quickstart.md", content)
}

// StaticBranchProvider is a BranchProvider returning fixed branch names per root
type StaticBranchProvider struct {
	mu       sync.Mutex
	branches map[string]string
	Err      error
}

// NewStaticBranchProvider creates a provider answering name for every root
func NewStaticBranchProvider(name string) *StaticBranchProvider {
	return &StaticBranchProvider{branches: map[string]string{"*": name}}
}

// Set changes the branch reported for root ("*" for every root)
func (p *StaticBranchProvider) Set(root, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.branches[root] = name
}

// CurrentBranchName implements output.BranchProvider
func (p *StaticBranchProvider) CurrentBranchName(_ context.Context, root string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	if name, ok := p.branches[root]; ok {
		return name, nil
	}
	return p.branches["*"], nil
}

// SubscribeBranchChange implements output.BranchProvider; notifications are unavailable
func (p *StaticBranchProvider) SubscribeBranchChange(string, func()) (output.Subscription, error) {
	return nil, nil
}

var _ output.BranchProvider = (*StaticBranchProvider)(nil)
