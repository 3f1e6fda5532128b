package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprinter_Silence_NoFingerprints(t *testing.T) {
	fp := NewFingerprinter(SR)
	samples := make([]float32, 10*SR) // 10s of all-zero PCM

	_, err := fp.Generate(samples)
	require.Error(t, err)
}

func TestFingerprinter_PureTone_ProducesFingerprints(t *testing.T) {
	fp := NewFingerprinter(SR)
	samples := sineWave(1000, 30.0, SR, 0.5)

	result, err := fp.Generate(samples)
	require.NoError(t, err)
	require.NotEmpty(t, result.Fingerprints)
	require.Greater(t, result.PeakCount, 0)
}

func TestFingerprinter_Deterministic(t *testing.T) {
	fp := NewFingerprinter(SR)
	samples := sineWave(440, 5.0, SR, 0.6)

	r1, err := fp.Generate(samples)
	require.NoError(t, err)
	r2, err := fp.Generate(samples)
	require.NoError(t, err)

	require.Equal(t, len(r1.Fingerprints), len(r2.Fingerprints))
	for i := range r1.Fingerprints {
		require.Equal(t, r1.Fingerprints[i].Hash, r2.Fingerprints[i].Hash)
		require.Equal(t, r1.Fingerprints[i].TimeOffset, r2.Fingerprints[i].TimeOffset)
	}
}

func TestFingerprinter_MonotonicTimeOffsets(t *testing.T) {
	fp := NewFingerprinter(SR)
	samples := sineWave(1000, 10.0, SR, 0.5)

	result, err := fp.Generate(samples)
	require.NoError(t, err)

	for i := 1; i < len(result.Fingerprints); i++ {
		require.LessOrEqual(t, result.Fingerprints[i-1].TimeOffset, result.Fingerprints[i].TimeOffset)
	}
}
