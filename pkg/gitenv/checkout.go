package gitenv

import (
	"fmt"
)

// CheckoutCommit force-checks-out the given commit and detaches HEAD at it.
// Local modifications in the working tree are overwritten.
func (r *Repository) CheckoutCommit(hash Hash) error {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return fmt.Errorf("lookup commit %s: %w", hash.Short(), err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("get tree of %s: %w", hash.Short(), err)
	}
	defer tree.Free()

	opts := forceCheckoutOptions(nil)

	err = r.repo.CheckoutTree(tree, &opts)
	if err != nil {
		return fmt.Errorf("checkout tree of %s: %w", hash.Short(), err)
	}

	err = r.repo.SetHeadDetached(hash.ToOid())
	if err != nil {
		return fmt.Errorf("detach HEAD at %s: %w", hash.Short(), err)
	}

	return nil
}
