package cache

import "fmt"

// ErrMissingEntry is returned when a lookup or validation step needs a
// cached row that is not present.
var ErrMissingEntry = fmt.Errorf("cache: entry not found")

// ErrNoRoot reports a root that has never been resolved. No function in
// this package returns it; ResolveRoot creates missing roots instead.
var ErrNoRoot = fmt.Errorf("cache: root not found")

// AggregateMismatchError reports an I1 violation discovered by
// ValidateAggregate: the stored aggregate size for Path does not equal the
// value actually computed for it — a file's own direct size, or a
// directory's direct size plus the sum of its children.
type AggregateMismatchError struct {
	Path     string
	Stored   uint64
	Computed uint64
}

func (e *AggregateMismatchError) Error() string {
	return fmt.Sprintf("cache: aggregate mismatch at %q: stored=%d computed=%d", e.Path, e.Stored, e.Computed)
}

// ValidationError wraps a recoverable cache-consistency failure detected by
// ValidateAggregate. Underneath it is ErrMissingEntry, an
// *AggregateMismatchError, or the storage error from listing a directory's
// children.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cache: validation failed at %q: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
