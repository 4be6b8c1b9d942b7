package scanner

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/soren-n/dusk/pkg/diskentry"
	"github.com/soren-n/dusk/pkg/query"
)

// shouldInclude implements the inclusion predicate: directories are always
// included (they're structural, not filtered, so the tree stays navigable
// regardless of any size filter or glob pattern), while files must satisfy
// both the size filter and the glob pattern, if either is set.
func shouldInclude(q query.SearchQuery, absPath, relative string, kind diskentry.Kind, directSize uint64) bool {
	if kind == diskentry.Directory {
		return true
	}
	if q.SizeFilter != nil && !q.SizeFilter.Matches(directSize) {
		return false
	}
	if q.RelativePattern == nil {
		return true
	}
	pattern := *q.RelativePattern
	if pattern == "" {
		return true
	}
	if ok, _ := doublestar.Match(pattern, absPath); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, relative)
	return ok
}
