package store

import (
	"context"
	"sync"

	"github.com/zfogg/echomatch/internal/apierr"
)

// MemoryStore is an in-memory Store, sufficient for tests and small
// deployments (spec.md §9). A single RWMutex serializes writes; Lookup is a
// map probe per hash, satisfying the O(k + r) requirement without an index.
type MemoryStore struct {
	mu sync.RWMutex

	nextID     uint
	recordings map[uint]RecordingMeta
	byHash     map[uint32][]Posting
	queries    []QueryRecord
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recordings: make(map[uint]RecordingMeta),
		byHash:     make(map[uint32][]Posting),
	}
}

func (s *MemoryStore) AddRecording(ctx context.Context, meta RecordingMeta) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	meta.ID = s.nextID
	s.recordings[meta.ID] = meta
	return meta.ID, nil
}

func (s *MemoryStore) Ingest(ctx context.Context, recordingID uint, fingerprints []Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recordings[recordingID]; !ok {
		return apierr.NotFound("recording")
	}

	// Stage writes so a cancellation mid-chunk leaves no partial trace.
	staged := make(map[uint32][]Posting)
	for _, chunk := range chunkFingerprints(fingerprints, BIns) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for _, fp := range chunk {
			staged[fp.Hash] = append(staged[fp.Hash], Posting{
				RecordingID:      recordingID,
				Hash:             fp.Hash,
				StoredTimeOffset: fp.TimeOffset,
			})
		}
	}

	for h, postings := range staged {
		s.byHash[h] = append(s.byHash[h], postings...)
	}
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, hashes []uint32) ([]Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Posting
	for _, chunk := range chunkUint32(hashes, BLook) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for _, h := range chunk {
			out = append(out, s.byHash[h]...)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetRecording(ctx context.Context, recordingID uint) (*RecordingMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.recordings[recordingID]
	if !ok {
		return nil, apierr.NotFound("recording")
	}
	return &meta, nil
}

func (s *MemoryStore) DeleteRecording(ctx context.Context, recordingID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recordings[recordingID]; !ok {
		return apierr.NotFound("recording")
	}
	delete(s.recordings, recordingID)

	for h, postings := range s.byHash {
		kept := postings[:0]
		for _, p := range postings {
			if p.RecordingID != recordingID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(s.byHash, h)
		} else {
			s.byHash[h] = kept
		}
	}
	return nil
}

func (s *MemoryStore) RecordQuery(ctx context.Context, q QueryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fpCount int64
	for _, postings := range s.byHash {
		fpCount += int64(len(postings))
	}

	var successful int64
	var totalMS int64
	for _, q := range s.queries {
		totalMS += q.ProcessingTimeMS
		if q.MatchedRecordingID != nil {
			successful++
		}
	}

	avg := 0.0
	if len(s.queries) > 0 {
		avg = float64(totalMS) / float64(len(s.queries))
	}

	return Stats{
		RecordingCount:          int64(len(s.recordings)),
		FingerprintCount:        fpCount,
		QueryCount:              int64(len(s.queries)),
		SuccessfulQueryCount:    successful,
		AverageProcessingTimeMS: avg,
	}, nil
}
