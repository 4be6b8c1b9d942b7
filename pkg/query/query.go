// Package query holds the plain data types a scan is parameterized by.
// Turning user-typed query strings into these types is an outer-layer
// concern and lives outside this module.
package query

// SizeOperator is a size comparison used by a SizeFilter.
type SizeOperator uint8

const (
	GreaterThan SizeOperator = iota
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

// SizeFilter restricts matching files to those whose direct size compares
// to Bytes per Operator.
type SizeFilter struct {
	Operator SizeOperator
	Bytes    uint64
}

// Matches reports whether size satisfies the filter.
func (f SizeFilter) Matches(size uint64) bool {
	switch f.Operator {
	case GreaterThan:
		return size > f.Bytes
	case GreaterThanOrEqual:
		return size >= f.Bytes
	case LessThan:
		return size < f.Bytes
	case LessThanOrEqual:
		return size <= f.Bytes
	default:
		return false
	}
}

// SearchQuery parameterizes a single scan. RelativePattern and SizeFilter
// are optional; a nil RelativePattern matches every path, and a nil
// SizeFilter imposes no size constraint.
type SearchQuery struct {
	Raw             string
	Root            string
	RelativePattern *string
	SizeFilter      *SizeFilter
}
