package gitenv

import (
	"errors"
	"fmt"
	"io"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// Point is one addressable version of the program under test along the
// walked history. Created by enumeration; never mutated.
type Point struct {
	// Hash is the commit id.
	Hash Hash

	// Label overrides the derived identifier for points named explicitly
	// rather than enumerated (e.g. a user-supplied version list).
	Label string

	// Summary is the first line of the commit message.
	Summary string

	// When is the committer timestamp.
	When time.Time
}

// ID returns the abbreviated identifier used to name artifacts and
// ledger records.
func (p Point) ID() string {
	if p.Label != "" {
		return p.Label
	}

	return p.Hash.Short()
}

// HistoryOptions configures point enumeration.
type HistoryOptions struct {
	// FirstParent follows only the first parent of merges, keeping the
	// walk on one linear history.
	FirstParent bool

	// Limit bounds the number of points (0 = no limit).
	Limit int
}

// EnumeratePoints lists historical points starting from HEAD, newest first.
// This is the only fatal failure point of a walk: without points there is
// nothing to benchmark.
func (r *Repository) EnumeratePoints(opts HistoryOptions) ([]Point, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	pushErr := walk.PushHead()
	if pushErr != nil {
		return nil, fmt.Errorf("push HEAD to revwalk: %w", pushErr)
	}

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	if opts.FirstParent {
		walk.SimplifyFirstParent()
	}

	var points []Point

	iterErr := walk.Iterate(func(commit *git2go.Commit) bool {
		points = append(points, Point{
			Hash:    HashFromOid(commit.Id()),
			Summary: commit.Summary(),
			When:    commit.Committer().When,
		})
		commit.Free()

		return opts.Limit <= 0 || len(points) < opts.Limit
	})
	if iterErr != nil {
		return nil, fmt.Errorf("walk history: %w", iterErr)
	}

	return points, nil
}

// ResolvePoint resolves a revision spec (short hash, branch, tag) to a
// point. Used when the version list is supplied explicitly instead of
// enumerated from HEAD.
func (r *Repository) ResolvePoint(spec string) (Point, error) {
	obj, err := r.repo.RevparseSingle(spec)
	if err != nil {
		return Point{}, fmt.Errorf("resolve %s: %w", spec, err)
	}
	defer obj.Free()

	peeled, peelErr := obj.Peel(git2go.ObjectCommit)
	if peelErr != nil {
		return Point{}, fmt.Errorf("peel %s to commit: %w", spec, peelErr)
	}
	defer peeled.Free()

	commit, commitErr := peeled.AsCommit()
	if commitErr != nil {
		return Point{}, fmt.Errorf("%s is not a commit: %w", spec, commitErr)
	}

	return Point{
		Hash:    HashFromOid(commit.Id()),
		Label:   spec,
		Summary: commit.Summary(),
		When:    commit.Committer().When,
	}, nil
}

// ErrNoMorePoints signals normal termination of a point source.
var ErrNoMorePoints = errors.New("no more points")

// PointSource yields historical points one at a time. Next returns
// ErrNoMorePoints (or io.EOF from custom sources) when the history is
// exhausted; that is normal termination, not a failure.
type PointSource interface {
	Next() (Point, error)
}

// SliceSource is a PointSource over a fixed, pre-enumerated point list.
type SliceSource struct {
	points []Point
	next   int
}

// NewSliceSource creates a source over the given points, in order.
func NewSliceSource(points []Point) *SliceSource {
	return &SliceSource{points: points}
}

// Next implements PointSource.
func (s *SliceSource) Next() (Point, error) {
	if s.next >= len(s.points) {
		return Point{}, ErrNoMorePoints
	}

	p := s.points[s.next]
	s.next++

	return p, nil
}

// Skip advances the source past the first n points, for checkpoint resume.
func (s *SliceSource) Skip(n int) {
	if n > len(s.points) {
		n = len(s.points)
	}

	s.next = n
}

// IsExhausted reports whether err signals normal end-of-history.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrNoMorePoints) || errors.Is(err, io.EOF)
}
