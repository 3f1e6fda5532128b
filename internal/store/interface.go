// Package store defines the fingerprint store contract: a pure posting-list
// abstraction over (recording_id, hash, time_offset) triples. The store makes
// no judgment about matching; that is the matcher's job.
package store

import "context"

// Default batch sizes (spec.md §4.4). Callers that hand larger slices to
// Ingest or Lookup get them chunked internally; these are not hard caps on
// caller input, just the wire-batch granularity.
const (
	BIns  = 1000
	BLook = 100
)

// Posting is one stored fingerprint returned by Lookup.
type Posting struct {
	RecordingID    uint
	Hash           uint32
	StoredTimeOffset float64
}

// RecordingMeta is the subset of recording attributes the store persists and
// returns from Add/Get.
type RecordingMeta struct {
	ID        uint
	Title     string
	Artist    string
	Album     *string
	Duration  *float64
	SourceRef string
}

// Stats summarizes store-wide counters for the admin surface (spec.md §6).
type Stats struct {
	RecordingCount          int64
	FingerprintCount        int64
	QueryCount              int64
	SuccessfulQueryCount    int64
	AverageProcessingTimeMS float64
}

// Fingerprint is the (hash, time_offset) pair a caller hands to Ingest,
// matching the transient type the pair hasher emits.
type Fingerprint struct {
	Hash       uint32
	TimeOffset float64
}

// Store is the fingerprint store contract (spec.md §4.4, §9). Implementations
// must serve Lookup in O(k + r) expected time (k distinct probe hashes, r
// returned postings), chunk writes at BIns and reads at BLook, and make
// ingestion atomic: a failed or cancelled Add leaves no trace of the
// recording's fingerprints.
type Store interface {
	// AddRecording creates recording metadata and returns its assigned id.
	// The recording is not queryable until its fingerprints are ingested.
	AddRecording(ctx context.Context, meta RecordingMeta) (uint, error)

	// Ingest writes fingerprints for recordingID in chunks of at most BIns.
	// Idempotent on (recording_id, hash, time_offset): re-ingesting the same
	// triple is tolerated, not an error. A partial failure removes every
	// fingerprint already written for this call (spec.md §4.6 atomicity).
	Ingest(ctx context.Context, recordingID uint, fingerprints []Fingerprint) error

	// Lookup returns every posting whose hash is in hashes, probing in
	// chunks of at most BLook and concatenating results.
	Lookup(ctx context.Context, hashes []uint32) ([]Posting, error)

	// GetRecording returns a recording's metadata, or ErrNotFound (as an
	// apierr.APIError) if it does not exist.
	GetRecording(ctx context.Context, recordingID uint) (*RecordingMeta, error)

	// DeleteRecording removes a recording and cascades its fingerprints.
	DeleteRecording(ctx context.Context, recordingID uint) error

	// RecordQuery appends an analytics row for one identify attempt.
	// Callers must swallow the returned error per spec.md §7 — analytics
	// writes never fail the user-facing operation.
	RecordQuery(ctx context.Context, q QueryRecord) error

	// Stats reports store-wide counters for the admin surface.
	Stats(ctx context.Context) (Stats, error)
}

// QueryRecord is one identify attempt, successful or not (spec.md §3, §7).
type QueryRecord struct {
	AudioDuration      float64
	MatchedRecordingID *uint
	Confidence         *float64
	ProcessingTimeMS   int64
}

// chunkUint32 splits xs into slices of at most size n, preserving order.
func chunkUint32(xs []uint32, n int) [][]uint32 {
	if n <= 0 || len(xs) <= n {
		return [][]uint32{xs}
	}
	var out [][]uint32
	for i := 0; i < len(xs); i += n {
		end := i + n
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[i:end])
	}
	return out
}

func chunkFingerprints(xs []Fingerprint, n int) [][]Fingerprint {
	if n <= 0 || len(xs) <= n {
		return [][]Fingerprint{xs}
	}
	var out [][]Fingerprint
	for i := 0; i < len(xs); i += n {
		end := i + n
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[i:end])
	}
	return out
}
