package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IngestAndLookup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.AddRecording(ctx, RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"})
	require.NoError(t, err)

	fps := []Fingerprint{
		{Hash: 111, TimeOffset: 0.0},
		{Hash: 222, TimeOffset: 1.0},
	}
	require.NoError(t, s.Ingest(ctx, id, fps))

	postings, err := s.Lookup(ctx, []uint32{111, 222, 999})
	require.NoError(t, err)
	require.Len(t, postings, 2)
}

func TestMemoryStore_LookupChunksAcrossBLook(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.AddRecording(ctx, RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"})
	require.NoError(t, err)

	var fps []Fingerprint
	hashes := make([]uint32, 0, BLook*3)
	for i := 0; i < BLook*3; i++ {
		h := uint32(i + 1)
		fps = append(fps, Fingerprint{Hash: h, TimeOffset: float64(i) * 0.1})
		hashes = append(hashes, h)
	}
	require.NoError(t, s.Ingest(ctx, id, fps))

	postings, err := s.Lookup(ctx, hashes)
	require.NoError(t, err)
	require.Len(t, postings, len(fps))
}

func TestMemoryStore_IngestUnknownRecordingFails(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Ingest(ctx, 999, []Fingerprint{{Hash: 1, TimeOffset: 0}})
	require.Error(t, err)
}

func TestMemoryStore_DeleteCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.AddRecording(ctx, RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"})
	require.NoError(t, err)
	require.NoError(t, s.Ingest(ctx, id, []Fingerprint{{Hash: 42, TimeOffset: 0}}))

	require.NoError(t, s.DeleteRecording(ctx, id))

	postings, err := s.Lookup(ctx, []uint32{42})
	require.NoError(t, err)
	require.Empty(t, postings)

	_, err = s.GetRecording(ctx, id)
	require.Error(t, err)
}

func TestMemoryStore_DeleteUnknownRecordingFails(t *testing.T) {
	s := NewMemoryStore()
	err := s.DeleteRecording(context.Background(), 123)
	require.Error(t, err)
}

func TestMemoryStore_StatsCountsQueries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.AddRecording(ctx, RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"})
	require.NoError(t, err)
	require.NoError(t, s.Ingest(ctx, id, []Fingerprint{{Hash: 1, TimeOffset: 0}, {Hash: 2, TimeOffset: 1}}))

	matched := id
	conf := 0.9
	require.NoError(t, s.RecordQuery(ctx, QueryRecord{AudioDuration: 5, MatchedRecordingID: &matched, Confidence: &conf, ProcessingTimeMS: 120}))
	require.NoError(t, s.RecordQuery(ctx, QueryRecord{AudioDuration: 5, ProcessingTimeMS: 80}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.RecordingCount)
	require.Equal(t, int64(2), stats.FingerprintCount)
	require.Equal(t, int64(2), stats.QueryCount)
	require.Equal(t, int64(1), stats.SuccessfulQueryCount)
	require.InDelta(t, 100.0, stats.AverageProcessingTimeMS, 0.001)
}

func TestMemoryStore_DistinctRecordingsConcurrentWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	idA, err := s.AddRecording(ctx, RecordingMeta{Title: "A", Artist: "Artist", SourceRef: "refA"})
	require.NoError(t, err)
	idB, err := s.AddRecording(ctx, RecordingMeta{Title: "B", Artist: "Artist", SourceRef: "refB"})
	require.NoError(t, err)

	done := make(chan error, 2)
	go func() { done <- s.Ingest(ctx, idA, []Fingerprint{{Hash: 1, TimeOffset: 0}}) }()
	go func() { done <- s.Ingest(ctx, idB, []Fingerprint{{Hash: 2, TimeOffset: 0}}) }()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	postings, err := s.Lookup(ctx, []uint32{1, 2})
	require.NoError(t, err)
	require.Len(t, postings, 2)
}
