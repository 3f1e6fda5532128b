// Package match implements the histogram-vote alignment search: given a
// query fingerprint set, choose the best candidate recording in the store
// and assign it a confidence score (spec.md §4.5).
package match

import (
	"context"
	"errors"
	"math"

	"github.com/zfogg/echomatch/internal/apierr"
	"github.com/zfogg/echomatch/internal/store"
)

// Matching parameters (spec.md §4.5). Fixed constants, not configuration.
const (
	MinMatches = 5
	ConfMin    = 0.1
	Tol        = 0.1
)

// ErrNoMatch is returned when no candidate clears the thresholds. It is a
// normal outcome of identification, not a failure (spec.md §4.5, §7).
var ErrNoMatch = errors.New("no match")

// QueryFingerprint is one (hash, query_time_offset) entry from the query
// clip being identified.
type QueryFingerprint struct {
	Hash           uint32
	QueryTimeOffset float64
}

// Result is a winning identification.
type Result struct {
	RecordingID        uint
	Confidence         float64
	Aligned            int
	QueryFingerprintCount int
}

// Matcher consumes query fingerprints, probes a store, and performs the
// histogram vote. It depends only on the store.Store contract (spec.md §9).
type Matcher struct {
	store store.Store
}

// NewMatcher constructs a Matcher over a Store.
func NewMatcher(s store.Store) *Matcher {
	return &Matcher{store: s}
}

type delta struct {
	recordingID uint
	value       float64
}

// Identify runs the full matching algorithm. ctx should carry the caller's
// soft 10s identification budget; a deadline exceeded while probing the
// store surfaces as apierr.Timeout rather than ErrNoMatch.
func (m *Matcher) Identify(ctx context.Context, query []QueryFingerprint) (*Result, error) {
	if len(query) == 0 {
		return nil, ErrNoMatch
	}

	// Build hash -> query_time_offsets multimap and the distinct probe set.
	queryTimesByHash := make(map[uint32][]float64)
	distinct := make([]uint32, 0, len(query))
	for _, qf := range query {
		if _, seen := queryTimesByHash[qf.Hash]; !seen {
			distinct = append(distinct, qf.Hash)
		}
		queryTimesByHash[qf.Hash] = append(queryTimesByHash[qf.Hash], qf.QueryTimeOffset)
	}

	postings, err := m.store.Lookup(ctx, distinct)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apierr.Timeout("identify")
		}
		return nil, apierr.StoreUnavailable(err.Error())
	}

	// Every stored collision pairs with every query occurrence of that hash.
	var deltas []delta
	for _, p := range postings {
		for _, qt := range queryTimesByHash[p.Hash] {
			deltas = append(deltas, delta{
				recordingID: p.RecordingID,
				value:       p.StoredTimeOffset - qt,
			})
		}
	}

	groups := make(map[uint][]float64)
	for _, d := range deltas {
		groups[d.recordingID] = append(groups[d.recordingID], d.value)
	}

	var best *Result
	var bestCombined float64

	for recordingID, group := range groups {
		if len(group) < MinMatches {
			continue
		}

		aligned, confidence := modeBinVote(group)
		if aligned < MinMatches || confidence < ConfMin {
			continue
		}

		combined := confidence * (float64(aligned) / float64(len(query)))

		if best == nil ||
			combined > bestCombined ||
			(combined == bestCombined && aligned > best.Aligned) ||
			(combined == bestCombined && aligned == best.Aligned && recordingID < best.RecordingID) {
			best = &Result{
				RecordingID:           recordingID,
				Confidence:            confidence,
				Aligned:               aligned,
				QueryFingerprintCount: len(query),
			}
			bestCombined = combined
		}
	}

	if best == nil {
		return nil, ErrNoMatch
	}
	return best, nil
}

// modeBinVote buckets deltas into TOL-wide bins and returns the mode bin's
// count and the group's confidence (aligned / total).
func modeBinVote(deltas []float64) (aligned int, confidence float64) {
	counts := make(map[float64]int, len(deltas))
	for _, d := range deltas {
		bin := math.Round(d/Tol) * Tol
		counts[bin]++
	}

	mode := 0
	for _, c := range counts {
		if c > mode {
			mode = c
		}
	}

	return mode, float64(mode) / float64(len(deltas))
}
