// Package diskentry defines the filesystem entry types shared by the
// scanner, the cache store, and the in-memory tree model.
package diskentry

import "time"

// Kind distinguishes a regular file from a directory. Symlinks and other
// special files are never represented as an Entry.
type Kind uint8

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

// Entry describes one filesystem object observed during a scan.
//
// Path is the absolute path on disk. Relative is the root-relative,
// forward-slash path used as the cache key ("." for the root itself).
type Entry struct {
	Path        string
	Relative    string
	FileName    string
	Kind        Kind
	DirectSize  uint64
	AggregateSize uint64
	Modified    time.Time
	Created     time.Time
}

// New builds an Entry from the pieces a walk step already has on hand.
func New(path, relative, fileName string, kind Kind, directSize uint64, modified, created time.Time) Entry {
	return Entry{
		Path:          path,
		Relative:      relative,
		FileName:      fileName,
		Kind:          kind,
		DirectSize:    directSize,
		AggregateSize: directSize,
		Modified:      modified,
		Created:       created,
	}
}
