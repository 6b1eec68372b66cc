package gitenv

import (
	"errors"
	"fmt"
)

// branchRefPrefix is the full-name prefix of local branch references.
const branchRefPrefix = "refs/heads/"

// ErrEmptySnapshot is returned when restoring a snapshot that captured nothing.
var ErrEmptySnapshot = errors.New("empty snapshot")

// Snapshot records the workspace position at walk start: the branch
// shorthand when HEAD is attached, otherwise just the raw commit id.
type Snapshot struct {
	// Branch is the branch shorthand (e.g. "master"), empty when HEAD
	// was detached at capture time.
	Branch string

	// Head is the commit HEAD pointed at.
	Head Hash
}

// IsZero reports whether the snapshot captured nothing.
func (s Snapshot) IsZero() bool {
	return s.Branch == "" && s.Head.IsZero()
}

// Ref returns the position description for logging.
func (s Snapshot) Ref() string {
	if s.Branch != "" {
		return s.Branch
	}

	return s.Head.String()
}

// Capture reads the workspace's current position. Callers treat failure as
// soft: benchmarking proceeds with a zero snapshot and restore becomes a no-op.
func (r *Repository) Capture() (Snapshot, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture HEAD: %w", err)
	}
	defer ref.Free()

	snap := Snapshot{Head: HashFromOid(ref.Target())}
	if ref.IsBranch() {
		snap.Branch = ref.Shorthand()
	}

	return snap, nil
}

// Restore forces the workspace back to the captured position. A zero
// snapshot restores nothing and returns ErrEmptySnapshot so the caller can
// report the degraded teardown.
func (r *Repository) Restore(snap Snapshot) error {
	if snap.IsZero() {
		return ErrEmptySnapshot
	}

	if snap.Branch != "" {
		return r.restoreBranch(snap.Branch)
	}

	return r.CheckoutCommit(snap.Head)
}

// restoreBranch re-attaches HEAD to the named branch and force-checks-out
// its tree.
func (r *Repository) restoreBranch(branch string) error {
	err := r.repo.SetHead(branchRefPrefix + branch)
	if err != nil {
		return fmt.Errorf("set HEAD to %s: %w", branch, err)
	}

	opts := forceCheckoutOptions(nil)

	err = r.repo.CheckoutHead(&opts)
	if err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}

	return nil
}
