package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soren-n/dusk/pkg/diskentry"
)

func mkEntry(relative string, kind diskentry.Kind, size uint64) diskentry.Entry {
	return diskentry.New("/root/"+relative, relative, relative, kind, size, time.Unix(0, 0), time.Unix(0, 0))
}

func TestUpsertLinksChildrenAndPropagatesMatch(t *testing.T) {
	s := New()
	s.Upsert(mkEntry(".", diskentry.Directory, 0))
	s.Upsert(mkEntry("dir", diskentry.Directory, 0))
	s.Upsert(mkEntry("dir/file.txt", diskentry.File, 10))

	require.ElementsMatch(t, []string{"dir"}, s.Children("."))
	require.ElementsMatch(t, []string{"dir/file.txt"}, s.Children("dir"))

	root, ok := s.Get(".")
	require.True(t, ok)
	require.True(t, root.ContainsMatch)

	dir, ok := s.Get("dir")
	require.True(t, ok)
	require.True(t, dir.ContainsMatch)
}

func TestAggregatedSizeSumsRecursively(t *testing.T) {
	s := New()
	s.Upsert(mkEntry(".", diskentry.Directory, 0))
	s.Upsert(mkEntry("a", diskentry.Directory, 0))
	s.Upsert(mkEntry("a/f1", diskentry.File, 10))
	s.Upsert(mkEntry("b", diskentry.Directory, 0))
	s.Upsert(mkEntry("b/f2", diskentry.File, 20))

	cache := make(map[string]uint64)
	require.Equal(t, uint64(30), s.AggregatedSize(".", cache))
	require.Equal(t, uint64(10), cache["a"])
	require.Equal(t, uint64(20), cache["b"])
}

func TestClearEmptiesTree(t *testing.T) {
	s := New()
	s.Upsert(mkEntry(".", diskentry.Directory, 0))
	s.Clear()
	_, ok := s.Get(".")
	require.False(t, ok)
}
