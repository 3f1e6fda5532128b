package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkCacheKey_OrderIndependent(t *testing.T) {
	a := chunkCacheKey([]uint32{3, 1, 2})
	b := chunkCacheKey([]uint32{1, 2, 3})
	require.Equal(t, a, b)
}

func TestChunkCacheKey_DifferentChunksDiffer(t *testing.T) {
	a := chunkCacheKey([]uint32{1, 2, 3})
	b := chunkCacheKey([]uint32{1, 2, 4})
	require.NotEqual(t, a, b)
}

func TestCachingStore_NilCacheFallsThroughToInner(t *testing.T) {
	inner := NewMemoryStore()
	cs := NewCachingStore(inner, nil)

	id, err := cs.AddRecording(context.Background(), RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"})
	require.NoError(t, err)
	require.NoError(t, cs.Ingest(context.Background(), id, []Fingerprint{{Hash: 1, TimeOffset: 0}}))

	postings, err := cs.Lookup(context.Background(), []uint32{1})
	require.NoError(t, err)
	require.Len(t, postings, 1)
}
