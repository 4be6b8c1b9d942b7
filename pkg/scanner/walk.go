package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/soren-n/dusk/pkg/cache"
	"github.com/soren-n/dusk/pkg/diskentry"
)

var errPreempted = errors.New("scanner: job preempted")

var logger = log.New(log.Writer(), "dusk/scanner: ", log.LstdFlags)

// directoryFrame is the scanner's transient per-directory accumulator.
// aggregate starts at 0 and grows as child files and finalized
// subdirectories are credited to it; the frame itself finalizes (setting
// entry.AggregateSize and crediting its parent) once every descendant has
// been visited.
type directoryFrame struct {
	entry     diskentry.Entry
	parent    string
	hasParent bool
	aggregate uint64
}

func (h *Handle) runScan(cmd Command) {
	h.messages <- Message{Kind: Begin, JobID: cmd.JobID, Root: cmd.Query.Root}

	var sess *cache.Session
	if cmd.CacheCtx != nil {
		s, err := cmd.CacheCtx.Store.BeginScan(context.Background(), cmd.CacheCtx.RootID, cmd.ScanTS)
		if err != nil {
			h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: cmd.Query.Root, Error: err.Error()}
			h.messages <- Message{Kind: Complete, JobID: cmd.JobID}
			return
		}
		sess = s
	}

	stats := Stats{}
	var stack []*directoryFrame
	aborted := false

	absRoot := cmd.Query.Root

	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if h.currentJobID() != cmd.JobID {
			aborted = true
			return errPreempted
		}

		relative := toRelative(absRoot, p)
		depth := relativeDepth(relative)

		for len(stack) > depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			var parent *directoryFrame
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			finalizeFrame(context.Background(), sess, top, parent)
		}

		if err != nil {
			stats.FsErrors++
			h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: p, Error: err.Error()}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			stats.FsErrors++
			h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: p, Error: infoErr.Error()}
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			// Symlinks and special files are skipped without counting.
			return nil
		}

		e := diskentry.FromFileInfo(p, relative, info)
		parentRelative, hasParent := parentOf(relative)

		if d.IsDir() {
			if sess != nil && cmd.CacheCtx != nil {
				replayed, total := h.tryCachedReplay(context.Background(), cmd, sess, e, &stats)
				if replayed {
					if len(stack) > 0 {
						stack[len(stack)-1].aggregate += total
					}
					return fs.SkipDir
				}
			}
			stats.DirsScanned++
			stack = append(stack, &directoryFrame{entry: e, parent: parentRelative, hasParent: hasParent})
			if shouldInclude(cmd.Query, p, relative, diskentry.Directory, 0) {
				h.messages <- Message{Kind: EntryMsg, JobID: cmd.JobID, Entry: e}
			}
			return nil
		}

		stats.FilesScanned++
		included := shouldInclude(cmd.Query, p, relative, diskentry.File, e.DirectSize)
		if included {
			h.messages <- Message{Kind: EntryMsg, JobID: cmd.JobID, Entry: e}
		}
		if sess != nil {
			if upErr := sess.Upsert(context.Background(), e, parentRelative, hasParent); upErr != nil {
				h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: p, Error: upErr.Error()}
			}
		}
		if len(stack) > 0 {
			stack[len(stack)-1].aggregate += e.DirectSize
		}
		return nil
	})

	if walkErr != nil && !errors.Is(walkErr, errPreempted) {
		stats.FsErrors++
		h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: absRoot, Error: walkErr.Error()}
	}

	if aborted {
		if sess != nil {
			sess.Abort()
		}
		h.messages <- Message{Kind: Complete, JobID: cmd.JobID}
		return
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		var parent *directoryFrame
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}
		finalizeFrame(context.Background(), sess, top, parent)
	}

	if sess != nil {
		if err := sess.Finish(context.Background()); err != nil {
			stats.CacheValidationErrors++
			h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: absRoot, Error: err.Error()}
		} else if _, verr := cmd.CacheCtx.Store.ValidateAggregate(context.Background(), cmd.CacheCtx.RootID, "."); verr != nil {
			stats.CacheValidationErrors++
			logger.Printf("post-scan validation of %s: %v", absRoot, verr)
			cmd.CacheCtx.Store.MarkDirty(context.Background(), cmd.CacheCtx.RootID, ".")
		}
	}

	h.messages <- Message{Kind: StatsMsg, JobID: cmd.JobID, Stats: stats}
	h.messages <- Message{Kind: Complete, JobID: cmd.JobID}
}

func finalizeFrame(ctx context.Context, sess *cache.Session, frame *directoryFrame, parent *directoryFrame) {
	total := frame.entry.DirectSize + frame.aggregate
	frame.entry.AggregateSize = total
	if sess != nil {
		sess.Upsert(ctx, frame.entry, frame.parent, frame.hasParent)
	}
	if parent != nil {
		parent.aggregate += total
	}
}

func toRelative(root, p string) string {
	if p == root {
		return "."
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func relativeDepth(relative string) int {
	if relative == "." {
		return 0
	}
	return strings.Count(relative, "/") + 1
}

func parentOf(relative string) (string, bool) {
	if relative == "." {
		return "", false
	}
	idx := strings.LastIndexByte(relative, '/')
	if idx < 0 {
		return ".", true
	}
	return relative[:idx], true
}

func (h *Handle) runClearCache(cmd Command) {
	h.messages <- Message{Kind: Begin, JobID: cmd.JobID, Root: cmd.Query.Root}
	var cleared bool
	if cmd.CacheCtx != nil {
		c, err := cmd.CacheCtx.Store.ClearRoot(context.Background(), cmd.Query.Root)
		if err != nil {
			h.messages <- Message{Kind: ErrorMsg, JobID: cmd.JobID, Path: cmd.Query.Root, Error: err.Error()}
		}
		cleared = c
	}
	h.messages <- Message{Kind: CacheCleared, JobID: cmd.JobID, Root: cmd.Query.Root, Cleared: cleared}
	h.messages <- Message{Kind: Complete, JobID: cmd.JobID}
}
