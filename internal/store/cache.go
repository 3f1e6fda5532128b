package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/zfogg/echomatch/internal/cache"
)

// lookupCacheTTL is short: entries are shared by every identify request
// that probes the same sorted hash chunk within this window; the cache never
// changes matcher semantics (SPEC_FULL §4).
const lookupCacheTTL = 30 * time.Second

// CachingStore decorates a Store with a Redis-backed cache over Lookup,
// keyed by the sorted hash chunk probed. Ingest, metadata, and admin
// operations pass straight through; the matcher's contract (spec.md §9,
// "the matcher must not depend on the backing store beyond the contract")
// is unaffected — this is purely a latency optimization.
type CachingStore struct {
	inner Store
	cache *cache.RedisClient
}

// NewCachingStore wraps inner with a lookup cache. If redisClient is nil,
// Lookup falls straight through to inner (useful for tests without Redis).
func NewCachingStore(inner Store, redisClient *cache.RedisClient) *CachingStore {
	return &CachingStore{inner: inner, cache: redisClient}
}

func (s *CachingStore) AddRecording(ctx context.Context, meta RecordingMeta) (uint, error) {
	return s.inner.AddRecording(ctx, meta)
}

func (s *CachingStore) Ingest(ctx context.Context, recordingID uint, fingerprints []Fingerprint) error {
	return s.inner.Ingest(ctx, recordingID, fingerprints)
}

// Lookup probes the cache per BLook-sized chunk (matching the store
// contract's own chunking granularity) before falling through to inner.
func (s *CachingStore) Lookup(ctx context.Context, hashes []uint32) ([]Posting, error) {
	if s.cache == nil {
		return s.inner.Lookup(ctx, hashes)
	}

	var out []Posting
	for _, chunk := range chunkUint32(hashes, BLook) {
		postings, err := s.lookupChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, postings...)
	}
	return out, nil
}

func (s *CachingStore) lookupChunk(ctx context.Context, chunk []uint32) ([]Posting, error) {
	key := chunkCacheKey(chunk)

	// A cache miss (redis.Nil) or any other Redis error both degrade to a
	// direct store hit; Redis being unavailable must never fail the caller.
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var postings []Posting
		if jsonErr := json.Unmarshal([]byte(cached), &postings); jsonErr == nil {
			return postings, nil
		}
	}

	postings, err := s.inner.Lookup(ctx, chunk)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(postings); err == nil {
		_ = s.cache.SetEx(ctx, key, string(encoded), lookupCacheTTL)
	}

	return postings, nil
}

// chunkCacheKey sorts the chunk so that identical probe sets hash to the
// same cache key regardless of caller ordering.
func chunkCacheKey(chunk []uint32) string {
	sorted := make([]uint32, len(chunk))
	copy(sorted, chunk)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := fnv1a(sorted)
	return fmt.Sprintf("lookup:%x", h)
}

// fnv1a computes a 64-bit FNV-1a hash over the sorted hash chunk, avoiding a
// multi-kilobyte cache key for large chunks.
func fnv1a(hashes []uint32) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	h := uint64(offset64)
	for _, v := range hashes {
		for shift := 0; shift < 32; shift += 8 {
			h ^= uint64((v >> shift) & 0xff)
			h *= prime64
		}
	}
	return h
}

func (s *CachingStore) GetRecording(ctx context.Context, recordingID uint) (*RecordingMeta, error) {
	return s.inner.GetRecording(ctx, recordingID)
}

func (s *CachingStore) DeleteRecording(ctx context.Context, recordingID uint) error {
	return s.inner.DeleteRecording(ctx, recordingID)
}

func (s *CachingStore) RecordQuery(ctx context.Context, q QueryRecord) error {
	return s.inner.RecordQuery(ctx, q)
}

func (s *CachingStore) Stats(ctx context.Context) (Stats, error) {
	return s.inner.Stats(ctx)
}
