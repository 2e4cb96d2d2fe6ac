package output

import "context"

// Subscription is a live branch-change listener
type Subscription interface {
	Close() error
}

// BranchProvider reports the checked-out branch of a workspace root
type BranchProvider interface {
	// CurrentBranchName returns the short branch name of root.
	// An empty name with a nil error means no branch (detached or no repository).
	CurrentBranchName(ctx context.Context, root string) (string, error)

	// SubscribeBranchChange calls onChange whenever root's branch changes.
	// It returns (nil, nil) when change notification is unavailable.
	SubscribeBranchChange(root string, onChange func()) (Subscription, error)
}
