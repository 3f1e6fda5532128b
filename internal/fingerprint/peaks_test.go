package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flatSpectrogram(frames, bins int, fill float64) *Spectrogram {
	f := make([][]float64, frames)
	for t := range f {
		f[t] = make([]float64, bins)
		for k := range f[t] {
			f[t][k] = fill
		}
	}
	return &Spectrogram{Frames: f, SampleRate: SR}
}

func TestPeakPicker_StrictLocalMaximum(t *testing.T) {
	spec := flatSpectrogram(41, 41, 0)
	spec.Frames[20][20] = AMin + 10

	pp := NewPeakPicker()
	peaks := pp.Pick(spec)

	require.Len(t, peaks, 1)
	require.Equal(t, AMin+10, peaks[0].Magnitude)
}

func TestPeakPicker_EqualNeighborDisqualifies(t *testing.T) {
	spec := flatSpectrogram(41, 41, 0)
	spec.Frames[20][20] = AMin + 10
	spec.Frames[20][21] = AMin + 10 // equal, not strictly less -> disqualifies both

	pp := NewPeakPicker()
	peaks := pp.Pick(spec)

	require.Empty(t, peaks)
}

func TestPeakPicker_BelowFloorExcluded(t *testing.T) {
	spec := flatSpectrogram(5, 5, 0)
	spec.Frames[2][2] = AMin - 0.01

	pp := NewPeakPicker()
	peaks := pp.Pick(spec)

	require.Empty(t, peaks)
}

func TestPeakPicker_EdgeCellsTreatOutOfBoundsAsAbsent(t *testing.T) {
	// A peak at the very corner (0,0) has no in-bounds neighbors on one
	// side; those must be treated as absent, not zero, so the peak still
	// qualifies as a strict local maximum.
	spec := flatSpectrogram(5, 5, 0)
	spec.Frames[0][0] = AMin + 5

	pp := NewPeakPicker()
	peaks := pp.Pick(spec)

	require.Len(t, peaks, 1)
	require.Equal(t, 0.0, peaks[0].TimeS)
}

func TestPeakPicker_OrderedByTimeThenFrequency(t *testing.T) {
	// Cells spaced more than Neighborhood/2 apart, so no two disqualify
	// each other.
	spec := flatSpectrogram(41, 41, 0)
	spec.Frames[20][30] = AMin + 5
	spec.Frames[5][20] = AMin + 5
	spec.Frames[5][5] = AMin + 5

	pp := NewPeakPicker()
	peaks := pp.Pick(spec)

	require.Len(t, peaks, 3)
	require.True(t, peaks[0].TimeS <= peaks[1].TimeS)
	require.True(t, peaks[1].TimeS <= peaks[2].TimeS)
	// The two peaks tied on frame 5 must be frequency-ascending.
	require.Less(t, peaks[0].FrequencyHz, peaks[1].FrequencyHz)
}

func TestPeakPicker_CapsAtPMaxByMagnitude(t *testing.T) {
	// Isolated single-cell peaks on a grid spaced far enough apart that no
	// two share a neighborhood, each with a distinct magnitude. There are
	// more of them than PMax, so the weakest ones must be dropped.
	const spacing = Neighborhood/2 + 1
	rows, cols := 101, 100
	spec := flatSpectrogram(rows*spacing, cols*spacing, 0)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			spec.Frames[r*spacing][c*spacing] = AMin + float64(r*cols+c)
		}
	}

	pp := NewPeakPicker()
	peaks := pp.Pick(spec)
	require.NotEmpty(t, peaks)
	require.LessOrEqual(t, len(peaks), PMax)
	require.Len(t, peaks, PMax)
	weakestKept := AMin + float64(rows*cols-PMax)
	for _, p := range peaks {
		require.GreaterOrEqual(t, p.Magnitude, weakestKept)
	}
}
