// Package checkpoint provides resumable state persistence for history walks.
package checkpoint

import "github.com/Sumatoshi-tech/benchwalk/pkg/bench"

// WalkState is the resumable progress of one walk: how many points were
// already visited and every outcome recorded so far. The ledger travels
// with the checkpoint so a resumed walk emits the complete result file.
type WalkState struct {
	NextIndex int                   `json:"next_index"`
	Records   []bench.OutcomeRecord `json:"records"`
}

// Metadata identifies the walk a checkpoint belongs to. A checkpoint is
// only valid for the exact repository and point sequence it was taken from.
type Metadata struct {
	Version   int      `json:"version"`
	RepoPath  string   `json:"repo_path"`
	RepoHash  string   `json:"repo_hash"`
	CreatedAt string   `json:"created_at"`
	Points    []string `json:"points"`
}
