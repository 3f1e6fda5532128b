package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zfogg/echomatch/internal/store"
)

func seedRecording(t *testing.T, s *store.MemoryStore, title string, fps []store.Fingerprint) uint {
	t.Helper()
	id, err := s.AddRecording(context.Background(), store.RecordingMeta{Title: title, Artist: "Artist", SourceRef: "ref"})
	require.NoError(t, err)
	require.NoError(t, s.Ingest(context.Background(), id, fps))
	return id
}

func TestMatcher_SelfIdentification(t *testing.T) {
	s := store.NewMemoryStore()

	// Recording's fingerprints anchored every 0.1s starting at t=60 (the
	// query is the clip [60, 70) of a longer recording).
	var stored []store.Fingerprint
	for i := 0; i < 100; i++ {
		stored = append(stored, store.Fingerprint{Hash: uint32(1000 + i), TimeOffset: 60.0 + float64(i)*0.1})
	}
	id := seedRecording(t, s, "Recording", stored)

	var query []QueryFingerprint
	for i := 0; i < 100; i++ {
		query = append(query, QueryFingerprint{Hash: uint32(1000 + i), QueryTimeOffset: float64(i) * 0.1})
	}

	m := NewMatcher(s)
	result, err := m.Identify(context.Background(), query)
	require.NoError(t, err)
	require.Equal(t, id, result.RecordingID)
	require.GreaterOrEqual(t, result.Confidence, 0.5)
}

func TestMatcher_NoMatchBelowMinMatches(t *testing.T) {
	s := store.NewMemoryStore()
	seedRecording(t, s, "Recording", []store.Fingerprint{
		{Hash: 1, TimeOffset: 0},
		{Hash: 2, TimeOffset: 1},
	})

	m := NewMatcher(s)
	_, err := m.Identify(context.Background(), []QueryFingerprint{
		{Hash: 1, QueryTimeOffset: 0},
		{Hash: 2, QueryTimeOffset: 1},
	})
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestMatcher_NoMatchWhenHashesUnknown(t *testing.T) {
	s := store.NewMemoryStore()
	seedRecording(t, s, "Recording", []store.Fingerprint{{Hash: 1, TimeOffset: 0}})

	m := NewMatcher(s)
	_, err := m.Identify(context.Background(), []QueryFingerprint{
		{Hash: 999, QueryTimeOffset: 0},
	})
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestMatcher_Crosstalk_PicksCorrectRecording(t *testing.T) {
	s := store.NewMemoryStore()

	var aFps, bFps []store.Fingerprint
	for i := 0; i < 20; i++ {
		aFps = append(aFps, store.Fingerprint{Hash: uint32(i), TimeOffset: float64(i) * 0.1})
	}
	for i := 0; i < 20; i++ {
		// B shares every hash with A but at inconsistent offsets, so it
		// cannot form a strong mode bin.
		bFps = append(bFps, store.Fingerprint{Hash: uint32(i), TimeOffset: float64(i) * 0.37})
	}

	idA := seedRecording(t, s, "A", aFps)
	_ = seedRecording(t, s, "B", bFps)

	var query []QueryFingerprint
	for i := 0; i < 20; i++ {
		query = append(query, QueryFingerprint{Hash: uint32(i), QueryTimeOffset: float64(i) * 0.1})
	}

	m := NewMatcher(s)
	result, err := m.Identify(context.Background(), query)
	require.NoError(t, err)
	require.Equal(t, idA, result.RecordingID)
}

func TestMatcher_MultipleQueryOccurrencesOfSameHashAllPair(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedRecording(t, s, "Recording", []store.Fingerprint{
		{Hash: 7, TimeOffset: 5.0},
	})

	m := NewMatcher(s)
	// Hash 7 appears twice in the query at different times; both must pair
	// with the single stored posting for hash 7.
	query := []QueryFingerprint{
		{Hash: 7, QueryTimeOffset: 0.0},
		{Hash: 7, QueryTimeOffset: 5.0},
	}
	for i := 0; i < 4; i++ {
		query = append(query, QueryFingerprint{Hash: 7, QueryTimeOffset: 0.0})
	}

	result, err := m.Identify(context.Background(), query)
	require.NoError(t, err)
	require.Equal(t, id, result.RecordingID)
}

func TestMatcher_EmptyQueryIsNoMatch(t *testing.T) {
	s := store.NewMemoryStore()
	m := NewMatcher(s)
	_, err := m.Identify(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoMatch)
}
