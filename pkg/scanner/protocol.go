// Package scanner walks a directory tree in a background goroutine,
// streaming results to a consumer while consulting and updating a
// persistent entry cache. Cached, unchanged subtrees are replayed from the
// database instead of being re-walked.
package scanner

import (
	"github.com/soren-n/dusk/pkg/cache"
	"github.com/soren-n/dusk/pkg/diskentry"
	"github.com/soren-n/dusk/pkg/query"
)

// Stats summarizes one scan.
type Stats struct {
	FilesScanned          uint64 `json:"filesScanned"`
	DirsScanned           uint64 `json:"dirsScanned"`
	CachedDirs            uint64 `json:"cachedDirs"`
	CachedEntries         uint64 `json:"cachedEntries"`
	CachedBytes           uint64 `json:"cachedBytes"`
	FsErrors              uint64 `json:"fsErrors"`
	CacheValidationErrors uint64 `json:"cacheValidationErrors"`
}

// CacheContext binds a scan to a cache root. Omit it (nil) to scan without
// caching.
type CacheContext struct {
	Store  *cache.Store
	RootID int64
}

// Command is the input protocol: a scan to run, or a cache to clear.
type Command struct {
	JobID    uint64
	ScanTS   int64
	Query    query.SearchQuery
	CacheCtx *CacheContext
	Clear    bool // when true, this is a ClearCache command instead of Run
}

// MessageKind tags a Message's active payload.
type MessageKind uint8

const (
	Begin MessageKind = iota
	EntryMsg
	ErrorMsg
	StatsMsg
	CacheCleared
	Complete
)

// Message is one event in the scan-result stream. Only the field(s)
// matching Kind are meaningful.
type Message struct {
	Kind    MessageKind
	JobID   uint64
	Root    string
	Entry   diskentry.Entry
	Path    string
	Error   string
	Stats   Stats
	Cleared bool
}
