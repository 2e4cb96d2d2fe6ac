package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
)

// CLIBranchProvider implements output.BranchProvider by shelling out to git
type CLIBranchProvider struct {
	bin     string
	timeout time.Duration
	logger  app.Logger
}

// NewCLIBranchProvider creates a provider running bin with a per-command timeout
func NewCLIBranchProvider(bin string, timeout time.Duration, logger app.Logger) *CLIBranchProvider {
	if bin == "" {
		bin = "git"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CLIBranchProvider{
		bin:     bin,
		timeout: timeout,
		logger:  logger,
	}
}

func (p *CLIBranchProvider) run(ctx context.Context, root string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, p.bin, append([]string{"-C", root}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed in %s: %w", strings.Join(args, " "), root, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranchName returns the short name of HEAD. A detached HEAD yields "".
func (p *CLIBranchProvider) CurrentBranchName(ctx context.Context, root string) (string, error) {
	out, err := p.run(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return normalizeBranch(out), nil
}

func normalizeBranch(out string) string {
	name := strings.TrimSpace(out)
	if name == "HEAD" {
		return ""
	}
	return name
}

// SubscribeBranchChange watches the repository's HEAD file. It returns (nil, nil)
// when root is not inside a git repository.
func (p *CLIBranchProvider) SubscribeBranchChange(root string, onChange func()) (output.Subscription, error) {
	gitDir, err := p.run(context.Background(), root, "rev-parse", "--absolute-git-dir")
	if err != nil || gitDir == "" {
		p.logger.Debug("branch change notification unavailable for %s: %v", root, err)
		return nil, nil
	}

	read := func() (string, bool) {
		name, err := p.CurrentBranchName(context.Background(), root)
		if err != nil {
			p.logger.Debug("read branch of %s: %v", root, err)
			return "", false
		}
		return name, true
	}

	h, err := watchHead(gitDir, read, onChange, p.logger)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// readBranch returns the current branch name, or false when it could not be read.
// A detached HEAD is a successful read of "".
type readBranch func() (string, bool)

// headWatcher fires onChange when the branch read after a HEAD update differs from the last one.
// Failed reads (HEAD mid-rewrite, git errors) are skipped and leave the last branch unchanged.
type headWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func watchHead(gitDir string, read readBranch, onChange func(), logger app.Logger) (*headWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// git replaces HEAD by renaming HEAD.lock, so the directory is watched rather than the file.
	if err := w.Add(gitDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", gitDir, err)
	}

	h := &headWatcher{
		watcher: w,
		done:    make(chan struct{}),
	}
	last, known := read()

	h.wg.Add(1)
	go h.loop(last, known, read, onChange, logger)
	return h, nil
}

func (h *headWatcher) loop(last string, known bool, read readBranch, onChange func(), logger app.Logger) {
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "HEAD" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			next, ok := read()
			if !ok {
				continue
			}
			if !known {
				last, known = next, true
				continue
			}
			if next == last {
				continue
			}
			logger.Debug("branch changed %q -> %q", last, next)
			last = next
			onChange()
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("branch watcher error: %v", err)
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (h *headWatcher) Close() error {
	var err error
	h.once.Do(func() {
		close(h.done)
		err = h.watcher.Close()
		h.wg.Wait()
	})
	return err
}

var _ output.BranchProvider = (*CLIBranchProvider)(nil)
