package gitenv

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// RestoreFileFrom overwrites one working-tree file with its content at the
// reference commit, but only when the on-disk content actually differs.
// Returns true when the file was rewritten. A path absent from the
// reference commit is not an error; nothing is restored.
//
// This is the per-step recovery patch: a narrow overwrite of a known-unstable
// file (e.g. a lockfile) from a trusted reference state.
func (r *Repository) RestoreFileFrom(ref Hash, path string) (bool, error) {
	commit, err := r.repo.LookupCommit(ref.ToOid())
	if err != nil {
		return false, fmt.Errorf("lookup reference commit %s: %w", ref.Short(), err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return false, fmt.Errorf("get reference tree: %w", err)
	}
	defer tree.Free()

	entry, err := tree.EntryByPath(path)
	if err != nil {
		// Not tracked at the reference commit; nothing to restore.
		return false, nil
	}

	blob, err := r.repo.LookupBlob(entry.Id)
	if err != nil {
		return false, fmt.Errorf("lookup blob for %s: %w", path, err)
	}
	defer blob.Free()

	onDisk, readErr := os.ReadFile(filepath.Join(r.Workdir(), path))
	if readErr == nil && bytes.Equal(onDisk, blob.Contents()) {
		return false, nil
	}

	opts := forceCheckoutOptions([]string{path})

	err = r.repo.CheckoutTree(tree, &opts)
	if err != nil {
		return false, fmt.Errorf("restore %s from %s: %w", path, ref.Short(), err)
	}

	return true, nil
}
