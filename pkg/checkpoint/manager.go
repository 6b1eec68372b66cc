package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sumatoshi-tech/benchwalk/pkg/persist"
)

// MetadataVersion is the current checkpoint metadata format version.
const MetadataVersion = 1

// stateBasename names the compressed walk state file inside the
// checkpoint directory.
const stateBasename = "walk"

// Sentinel errors for checkpoint validation.
var (
	ErrRepoPathMismatch = errors.New("repo path mismatch")
	ErrPointsMismatch   = errors.New("point sequence mismatch")
)

// Directory permissions for checkpoints.
const dirPerm = 0o750

// DefaultDir returns the default checkpoint directory (~/.benchwalk/checkpoints).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".benchwalk", "checkpoints")
}

// RepoHash computes a short hash of the repository path for use as directory name.
func RepoHash(repoPath string) string {
	h := sha256.Sum256([]byte(repoPath))

	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars.
}

// Manager persists and restores walk progress for one repository.
type Manager struct {
	BaseDir  string
	RepoHash string

	codec persist.Codec
}

// NewManager creates a checkpoint manager rooted at baseDir.
func NewManager(baseDir, repoHash string) *Manager {
	return &Manager{
		BaseDir:  baseDir,
		RepoHash: repoHash,
		codec:    persist.NewLZ4Codec(),
	}
}

// CheckpointDir returns the directory for this repository's checkpoint.
func (m *Manager) CheckpointDir() string {
	return filepath.Join(m.BaseDir, m.RepoHash)
}

// MetadataPath returns the path to the metadata file.
func (m *Manager) MetadataPath() string {
	return filepath.Join(m.CheckpointDir(), "checkpoint.json")
}

// Exists returns true if a checkpoint exists for this repository.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.MetadataPath())

	return err == nil
}

// Clear removes the checkpoint for the current repository.
func (m *Manager) Clear() error {
	cpDir := m.CheckpointDir()

	_, statErr := os.Stat(cpDir)
	if os.IsNotExist(statErr) {
		return nil
	}

	err := os.RemoveAll(cpDir)
	if err != nil {
		return fmt.Errorf("remove checkpoint dir: %w", err)
	}

	return nil
}

// Save writes the walk state and its identifying metadata.
func (m *Manager) Save(state *WalkState, repoPath string, points []string) error {
	cpDir := m.CheckpointDir()

	err := os.MkdirAll(cpDir, dirPerm)
	if err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	saveErr := persist.SaveState(cpDir, stateBasename, m.codec, state)
	if saveErr != nil {
		return fmt.Errorf("save walk state: %w", saveErr)
	}

	meta := Metadata{
		Version:   MetadataVersion,
		RepoPath:  repoPath,
		RepoHash:  m.RepoHash,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Points:    points,
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	writeErr := os.WriteFile(m.MetadataPath(), metaData, 0o600)
	if writeErr != nil {
		return fmt.Errorf("write metadata: %w", writeErr)
	}

	return nil
}

// LoadMetadata loads the checkpoint metadata.
func (m *Manager) LoadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(m.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata

	unmarshalErr := json.Unmarshal(data, &meta)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", unmarshalErr)
	}

	return &meta, nil
}

// Load restores the walk state.
func (m *Manager) Load() (*WalkState, error) {
	var state WalkState

	err := persist.LoadState(m.CheckpointDir(), stateBasename, m.codec, &state)
	if err != nil {
		return nil, fmt.Errorf("load walk state: %w", err)
	}

	return &state, nil
}

// Validate checks that the checkpoint matches the given repository and
// point sequence. A checkpoint taken against different history must not
// be resumed.
func (m *Manager) Validate(repoPath string, points []string) error {
	meta, err := m.LoadMetadata()
	if err != nil {
		return err
	}

	if meta.RepoPath != repoPath {
		return fmt.Errorf("%w: checkpoint has %q, got %q", ErrRepoPathMismatch, meta.RepoPath, repoPath)
	}

	if !stringSlicesEqual(meta.Points, points) {
		return fmt.Errorf("%w: checkpoint covers %d points, walk enumerates %d",
			ErrPointsMismatch, len(meta.Points), len(points))
	}

	return nil
}

// stringSlicesEqual compares two string slices for equality.
func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
