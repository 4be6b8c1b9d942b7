package diskentry

import (
	"io/fs"
	"path"
)

// FromFileInfo builds an Entry for a walk step given its absolute path, the
// root-relative path computed by the caller, and the fs.FileInfo returned by
// Lstat/WalkDir.
func FromFileInfo(absPath, relative string, info fs.FileInfo) Entry {
	kind := File
	var directSize uint64
	if info.IsDir() {
		kind = Directory
	} else {
		directSize = uint64(info.Size())
	}
	e := New(absPath, relative, path.Base(relative), kind, directSize, info.ModTime(), createdTime(info))
	if relative == "." {
		e.FileName = path.Base(absPath)
	}
	return e
}
