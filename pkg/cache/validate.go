package cache

import (
	"context"

	"github.com/soren-n/dusk/pkg/diskentry"
)

// Summary reports the outcome of a successful ValidateAggregate call.
type Summary struct {
	Entries   int
	Dirs      int
	TotalSize uint64
}

// ValidateAggregate recursively verifies I1 (aggregate consistency) from
// anchor downward, returning a *ValidationError wrapping ErrMissingEntry or
// *AggregateMismatchError on the first inconsistency found (or wrapping the
// storage error if a directory's children cannot be listed).
func (s *Store) ValidateAggregate(ctx context.Context, rootID int64, anchor string) (Summary, error) {
	var sum Summary
	computed, err := s.verifyEntry(ctx, rootID, anchor, &sum)
	if err != nil {
		return Summary{}, err
	}
	sum.TotalSize = computed
	return sum, nil
}

func (s *Store) verifyEntry(ctx context.Context, rootID int64, relative string, sum *Summary) (uint64, error) {
	row, err := s.Entry(ctx, rootID, relative)
	if err != nil {
		return 0, &ValidationError{Path: relative, Err: ErrMissingEntry}
	}

	sum.Entries++
	if row.Kind != diskentry.Directory {
		if row.AggregateSize != row.DirectSize {
			return 0, &ValidationError{
				Path: relative,
				Err: &AggregateMismatchError{
					Path:     relative,
					Stored:   row.AggregateSize,
					Computed: row.DirectSize,
				},
			}
		}
		return row.DirectSize, nil
	}
	sum.Dirs++

	children, err := s.ChildrenOf(ctx, rootID, relative)
	if err != nil {
		return 0, &ValidationError{Path: relative, Err: err}
	}

	var childTotal uint64
	for _, c := range children {
		total, err := s.verifyEntry(ctx, rootID, c.Relative, sum)
		if err != nil {
			return 0, err
		}
		childTotal += total
	}

	computed := row.DirectSize + childTotal
	if computed != row.AggregateSize {
		return 0, &ValidationError{
			Path: relative,
			Err: &AggregateMismatchError{
				Path:     relative,
				Stored:   row.AggregateSize,
				Computed: computed,
			},
		}
	}
	return computed, nil
}
