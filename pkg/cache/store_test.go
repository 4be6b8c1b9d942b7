package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soren-n/dusk/pkg/diskentry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "dusk.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func upsertDir(t *testing.T, sess *Session, relative, parent string, hasParent bool, aggregate uint64) {
	t.Helper()
	e := diskentry.New("/root/"+relative, relative, filepath.Base(relative), diskentry.Directory, 0, time.Unix(0, 0), time.Unix(0, 0))
	e.AggregateSize = aggregate
	require.NoError(t, sess.Upsert(context.Background(), e, parent, hasParent))
}

func upsertFile(t *testing.T, sess *Session, relative, parent string, size uint64) {
	t.Helper()
	e := diskentry.New("/root/"+relative, relative, filepath.Base(relative), diskentry.File, size, time.Unix(0, 0), time.Unix(0, 0))
	require.NoError(t, sess.Upsert(context.Background(), e, parent, true))
}

// upsertFileWithAggregate writes a file row whose stored aggregate_size
// disagrees with its direct_size, simulating a corrupted or tampered row.
func upsertFileWithAggregate(t *testing.T, sess *Session, relative, parent string, directSize, aggregateSize uint64) {
	t.Helper()
	e := diskentry.New("/root/"+relative, relative, filepath.Base(relative), diskentry.File, directSize, time.Unix(0, 0), time.Unix(0, 0))
	e.AggregateSize = aggregateSize
	require.NoError(t, sess.Upsert(context.Background(), e, parent, true))
}

func TestMarkAncestorsDirtyMarksFullChain(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 0)
	upsertDir(t, sess, "dir", ".", true, 0)
	upsertDir(t, sess, "dir/sub", "dir", true, 0)
	upsertFile(t, sess, "dir/sub/file.txt", "dir/sub", 10)
	require.NoError(t, sess.Finish(ctx))

	require.NoError(t, store.MarkAncestorsDirty(ctx, rootID, "dir/sub/file.txt"))

	for _, rel := range []string{".", "dir", "dir/sub", "dir/sub/file.txt"} {
		row, err := store.Entry(ctx, rootID, rel)
		require.NoError(t, err)
		require.Truef(t, row.Dirty(), "expected %s to be dirty", rel)
	}
}

func TestMarkAncestorsDirtyOnDirectoryMarksRoot(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 0)
	upsertDir(t, sess, "dir", ".", true, 0)
	require.NoError(t, sess.Finish(ctx))

	require.NoError(t, store.MarkAncestorsDirty(ctx, rootID, "dir"))

	root, err := store.Entry(ctx, rootID, ".")
	require.NoError(t, err)
	require.True(t, root.Dirty())
}

func TestMarkDirtyAfterRemoveMarksParent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 10)
	upsertFile(t, sess, "f.txt", ".", 10)
	require.NoError(t, sess.Finish(ctx))

	// Simulate removal: the next scan session simply doesn't see f.txt.
	sess2, err := store.BeginScan(ctx, rootID, 200)
	require.NoError(t, err)
	upsertDir(t, sess2, ".", "", false, 0)
	require.NoError(t, sess2.Finish(ctx))

	require.NoError(t, store.MarkAncestorsDirty(ctx, rootID, "f.txt"))

	root, err := store.Entry(ctx, rootID, ".")
	require.NoError(t, err)
	require.True(t, root.Dirty())

	_, err = store.Entry(ctx, rootID, "f.txt")
	require.ErrorIs(t, err, ErrMissingEntry)
}

func TestValidateAggregateDetectsMismatch(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 999)
	upsertFile(t, sess, "a.txt", ".", 40)
	upsertFile(t, sess, "b.txt", ".", 60)
	require.NoError(t, sess.Finish(ctx))

	_, err = store.ValidateAggregate(ctx, rootID, ".")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	var mismatch *AggregateMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, uint64(999), mismatch.Stored)
	require.Equal(t, uint64(100), mismatch.Computed)
}

func TestValidateAggregateDetectsFileLevelMismatch(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 50)
	// a.txt's own aggregate_size (50) disagrees with its direct_size (40):
	// an I1 violation that must be caught at the file itself, not masked by
	// happening to sum to the parent's stored aggregate.
	upsertFileWithAggregate(t, sess, "a.txt", ".", 40, 50)
	require.NoError(t, sess.Finish(ctx))

	_, err = store.ValidateAggregate(ctx, rootID, ".")
	require.Error(t, err)

	var mismatch *AggregateMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "a.txt", mismatch.Path)
	require.Equal(t, uint64(50), mismatch.Stored)
	require.Equal(t, uint64(40), mismatch.Computed)
}

func TestValidateAggregateSucceedsWhenConsistent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 100)
	upsertFile(t, sess, "a.txt", ".", 40)
	upsertFile(t, sess, "b.txt", ".", 60)
	require.NoError(t, sess.Finish(ctx))

	summary, err := store.ValidateAggregate(ctx, rootID, ".")
	require.NoError(t, err)
	require.Equal(t, uint64(100), summary.TotalSize)
	require.Equal(t, 3, summary.Entries)
}

func TestValidateAggregateSetsTotalSizeForNonRootAnchor(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rootID, err := store.ResolveRoot(ctx, "/root")
	require.NoError(t, err)

	sess, err := store.BeginScan(ctx, rootID, 100)
	require.NoError(t, err)
	upsertDir(t, sess, ".", "", false, 100)
	upsertDir(t, sess, "dir", ".", true, 100)
	upsertFile(t, sess, "dir/a.txt", "dir", 100)
	require.NoError(t, sess.Finish(ctx))

	summary, err := store.ValidateAggregate(ctx, rootID, "dir")
	require.NoError(t, err)
	require.Equal(t, uint64(100), summary.TotalSize)
}
