package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mbrowse/internal/db"
	"github.com/llehouerou/mbrowse/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func queries(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

func TestAdd_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{"nirvana", "nevermind", "smells like"} {
		require.NoError(t, s.Add(ctx, Entry{Query: q, Kind: entity.Artist}))
	}

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"smells like", "nevermind", "nirvana"}, queries(got))
}

func TestAdd_DuplicateMovesToFront(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Entry{Query: "a", Kind: entity.Artist, Results: 1}))
	require.NoError(t, s.Add(ctx, Entry{Query: "b", Kind: entity.Artist}))
	require.NoError(t, s.Add(ctx, Entry{Query: "a", Kind: entity.Artist, Results: 7}))

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Query)
	assert.Equal(t, 7, got[0].Results)
}

func TestAdd_SameQueryOtherKindIsDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Entry{Query: "nevermind", Kind: entity.Release}))
	require.NoError(t, s.Add(ctx, Entry{Query: "nevermind", Kind: entity.ReleaseGroup}))

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entity.ReleaseGroup, got[0].Kind)
	assert.Equal(t, entity.Release, got[1].Kind)
}

func TestAdd_IgnoresEmptyAndUnknown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Entry{Query: "   ", Kind: entity.Artist}))
	require.NoError(t, s.Add(ctx, Entry{Query: "x", Kind: entity.Unknown}))

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdd_Prunes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range MaxEntries + 15 {
		require.NoError(t, s.Add(ctx, Entry{Query: fmt.Sprintf("q%d", i), Kind: entity.Work}))
	}

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, MaxEntries)
	assert.Equal(t, fmt.Sprintf("q%d", MaxEntries+14), got[0].Query)
	assert.Equal(t, "q15", got[len(got)-1].Query)
}

func TestRecent_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(ctx, Entry{Query: q, Kind: entity.Label}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, queries(got))
}

func TestSearchedAt(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Add(context.Background(), Entry{Query: "a", Kind: entity.Area}))

	got, err := s.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, fixed.Equal(got[0].SearchedAt))
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, Entry{Query: "a", Kind: entity.Artist}))

	require.NoError(t, s.Clear(ctx))

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
