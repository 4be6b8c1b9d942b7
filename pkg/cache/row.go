package cache

import "github.com/soren-n/dusk/pkg/diskentry"

// Row is one persisted entries-table record, keyed by (RootID, Relative).
type Row struct {
	RootID        int64
	Relative      string
	Parent        string // empty for the root entry "."
	HasParent     bool
	Kind          diskentry.Kind
	DirectSize    uint64
	AggregateSize uint64
	MtimeUTC      int64
	CtimeUTC      int64
	LastSeenUTC   int64
	Flags         int64
}

// Dirty reports whether bit 0 of Flags is set.
func (r Row) Dirty() bool {
	return r.Flags&1 != 0
}
