package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairHash_Deterministic(t *testing.T) {
	h1 := pairHash(440.0, 880.3, 1.234)
	h2 := pairHash(440.0, 880.3, 1.234)
	require.Equal(t, h1, h2)
}

func TestPairHash_SubQuantumPerturbationLeavesHashUnchanged(t *testing.T) {
	base := pairHash(440.0, 880.0, 1.0)
	// Perturb frequencies by <10 Hz and dt by <0.01s: must land in the same
	// quantization bin and hash identically.
	perturbed := pairHash(444.0, 885.0, 1.005)
	require.Equal(t, base, perturbed)
}

func TestPairHash_CrossingBinBoundaryChangesHash(t *testing.T) {
	base := pairHash(440.0, 880.0, 1.0)
	crossed := pairHash(450.0, 880.0, 1.0) // crosses a 10Hz quantization boundary
	require.NotEqual(t, base, crossed)
}

func TestPairHash_ExactFormula(t *testing.T) {
	// q1 = 440, q2 = 880, qd = floor(1.0*100)*10 = 1000
	var want uint32
	want = want*31 + 440
	want = want*31 + 880
	want = want*31 + 1000

	got := pairHash(440.0, 880.0, 1.0)
	require.Equal(t, want, got)
}

func TestPairHasher_RespectsTimeWindowAndFanout(t *testing.T) {
	peaks := []Peak{
		{FrequencyHz: 100, TimeS: 0.0},
		{FrequencyHz: 200, TimeS: 0.2},  // too close: dt < DTMin
		{FrequencyHz: 300, TimeS: 0.6},  // valid target 1
		{FrequencyHz: 400, TimeS: 1.0},  // valid target 2
		{FrequencyHz: 500, TimeS: 1.5},  // valid target 3
		{FrequencyHz: 600, TimeS: 2.0},  // valid target 4, excluded by Fanout=3
		{FrequencyHz: 700, TimeS: 4.0},  // too far: dt > DTMax
	}

	ph := NewPairHasher()
	fps := ph.Hash(peaks)

	// Anchor at t=0 should produce exactly Fanout=3 fingerprints.
	anchorCount := 0
	for _, fp := range fps {
		if fp.TimeOffset == 0.0 {
			anchorCount++
		}
	}
	require.Equal(t, Fanout, anchorCount)
}

func TestPairHasher_MonotonicAnchorTimeOffsets(t *testing.T) {
	peaks := []Peak{
		{FrequencyHz: 100, TimeS: 0.0},
		{FrequencyHz: 200, TimeS: 1.0},
		{FrequencyHz: 300, TimeS: 2.0},
	}

	ph := NewPairHasher()
	fps := ph.Hash(peaks)

	for i := 1; i < len(fps); i++ {
		require.LessOrEqual(t, fps[i-1].TimeOffset, fps[i].TimeOffset)
	}
}
