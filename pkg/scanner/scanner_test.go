package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soren-n/dusk/pkg/cache"
	"github.com/soren-n/dusk/pkg/query"
)

func newTestCacheCtx(t *testing.T, root string) *CacheContext {
	t.Helper()
	ctx := context.Background()
	store, err := cache.Open(ctx, filepath.Join(t.TempDir(), "dusk.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rootID, err := store.ResolveRoot(ctx, root)
	require.NoError(t, err)
	return &CacheContext{Store: store, RootID: rootID}
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestColdScanReportsFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))
	writeFile(t, filepath.Join(root, "a", "f1"), "0123456789")
	writeFile(t, filepath.Join(root, "b", "f2"), "0123456789")

	cacheCtx := newTestCacheCtx(t, root)
	q := query.SearchQuery{Raw: root, Root: root}

	entries, stats, err := RunToCompletion(q, 1000, cacheCtx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), stats.FilesScanned)
	require.Equal(t, uint64(3), stats.DirsScanned)
	require.NotEmpty(t, entries)

	summary, err := cacheCtx.Store.ValidateAggregate(context.Background(), cacheCtx.RootID, ".")
	require.NoError(t, err)
	require.Equal(t, uint64(20), summary.TotalSize)
}

func TestWarmScanReusesCache(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))
	writeFile(t, filepath.Join(root, "a", "f1"), "0123456789")
	writeFile(t, filepath.Join(root, "b", "f2"), "0123456789")

	cacheCtx := newTestCacheCtx(t, root)
	q := query.SearchQuery{Raw: root, Root: root}

	_, _, err := RunToCompletion(q, 1000, cacheCtx)
	require.NoError(t, err)

	_, stats, err := RunToCompletion(q, 2000, cacheCtx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.CachedDirs, uint64(2))
	require.Equal(t, uint64(0), stats.CacheValidationErrors)

	summary, err := cacheCtx.Store.ValidateAggregate(context.Background(), cacheCtx.RootID, ".")
	require.NoError(t, err)
	require.Equal(t, uint64(20), summary.TotalSize)
}

func TestMutationInvalidatesAncestors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))
	writeFile(t, filepath.Join(root, "a", "f1"), "0123456789")
	writeFile(t, filepath.Join(root, "b", "f2"), "0123456789")

	cacheCtx := newTestCacheCtx(t, root)
	q := query.SearchQuery{Raw: root, Root: root}

	_, _, err := RunToCompletion(q, 1000, cacheCtx)
	require.NoError(t, err)

	// Rewrite f1 and touch a's mtime forward. The root's own mtime does not
	// change, so its replay gate would still pass; mark f1's ancestors dirty
	// the way a watcher consumer does on a Dirty event, so the root and a are
	// re-walked while b still replays.
	time.Sleep(10 * time.Millisecond)
	writeFile(t, filepath.Join(root, "a", "f1"), "01234567890123456789")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a"), future, future))
	require.NoError(t, cacheCtx.Store.MarkAncestorsDirty(context.Background(), cacheCtx.RootID, "a/f1"))

	_, stats, err := RunToCompletion(q, 3000, cacheCtx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.CachedDirs, uint64(1)) // b should still replay

	summary, err := cacheCtx.Store.ValidateAggregate(context.Background(), cacheCtx.RootID, ".")
	require.NoError(t, err)
	require.Equal(t, uint64(30), summary.TotalSize)
}

func TestSizeFilterExcludesSmallFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	writeFile(t, filepath.Join(root, "small"), "hi")
	writeFile(t, filepath.Join(root, "big"), string(make([]byte, 4096)))

	q := query.SearchQuery{
		Raw:        root,
		Root:       root,
		SizeFilter: &query.SizeFilter{Operator: query.GreaterThan, Bytes: 1024},
	}

	entries, _, err := RunToCompletion(q, 1000, nil)
	require.NoError(t, err)

	var fileNames, dirNames []string
	for _, e := range entries {
		if e.Kind.String() == "file" {
			fileNames = append(fileNames, e.FileName)
		} else {
			dirNames = append(dirNames, e.Relative)
		}
	}
	require.Equal(t, []string{"big"}, fileNames)
	// Directories are structural, not filtered: a size filter that excludes
	// every file must still leave every directory entry in place.
	require.ElementsMatch(t, []string{".", "sub"}, dirNames)
}

func TestPatternDoesNotExcludeDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	writeFile(t, filepath.Join(root, "sub", "f1.go"), "package sub\n")
	writeFile(t, filepath.Join(root, "sub", "f2.txt"), "not go\n")

	pattern := "**/*.go"
	q := query.SearchQuery{Raw: root, Root: root, RelativePattern: &pattern}

	entries, _, err := RunToCompletion(q, 1000, nil)
	require.NoError(t, err)

	var dirNames []string
	var fileNames []string
	for _, e := range entries {
		if e.Kind.String() == "directory" {
			dirNames = append(dirNames, e.Relative)
		} else {
			fileNames = append(fileNames, e.FileName)
		}
	}
	require.ElementsMatch(t, []string{".", "sub"}, dirNames)
	require.Equal(t, []string{"f1.go"}, fileNames)
}

func TestCancellationLeavesCacheUntouched(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f1"), "0123456789")

	cacheCtx := newTestCacheCtx(t, root)
	q := query.SearchQuery{Raw: root, Root: root}

	// First, a real scan so the cache has a known-good baseline.
	_, _, err := RunToCompletion(q, 1000, cacheCtx)
	require.NoError(t, err)
	before, err := cacheCtx.Store.EntriesForRoot(context.Background(), cacheCtx.RootID)
	require.NoError(t, err)

	// Now issue two commands back to back through the same handle: the
	// first should be preempted before it can finalize.
	handle := Spawn()
	defer handle.Close()
	handle.RequestScan(q, 2000, cacheCtx)
	handle.RequestScan(q, 3000, cacheCtx)

	seenComplete := 0
	for msg := range handle.Messages() {
		if msg.Kind == Complete {
			seenComplete++
			if seenComplete == 2 {
				break
			}
		}
	}

	after, err := cacheCtx.Store.EntriesForRoot(context.Background(), cacheCtx.RootID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
}
