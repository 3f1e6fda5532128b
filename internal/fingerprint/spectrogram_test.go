package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sineWave(freqHz float64, seconds float64, sampleRate int, amplitude float64) []float32 {
	n := int(seconds * float64(sampleRate))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}

func TestSpectrogrammer_FrameCountFormula(t *testing.T) {
	sg := NewSpectrogrammer(SR)
	samples := sineWave(440, 2.0, SR, 0.5)

	spec, err := sg.Compute(samples)
	require.NoError(t, err)

	want := (len(samples)-W)/H + 1
	require.Equal(t, want, spec.NumFrames())
}

func TestSpectrogrammer_InputTooShort(t *testing.T) {
	sg := NewSpectrogrammer(SR)
	samples := make([]float32, W-1)

	_, err := sg.Compute(samples)
	require.Error(t, err)
}

func TestSpectrogrammer_BinsIsHalfWindow(t *testing.T) {
	sg := NewSpectrogrammer(SR)
	samples := sineWave(1000, 1.0, SR, 0.5)

	spec, err := sg.Compute(samples)
	require.NoError(t, err)
	require.Equal(t, W/2, spec.Bins())
}

func TestSpectrogrammer_PureTonePeaksNearExpectedBin(t *testing.T) {
	sg := NewSpectrogrammer(SR)
	samples := sineWave(1000, 2.0, SR, 0.5)

	spec, err := sg.Compute(samples)
	require.NoError(t, err)

	// Find the bin of maximum average magnitude across frames.
	bins := spec.Bins()
	avg := make([]float64, bins)
	for _, frame := range spec.Frames {
		for k, v := range frame {
			avg[k] += v
		}
	}
	bestBin := 0
	for k := 1; k < bins; k++ {
		if avg[k] > avg[bestBin] {
			bestBin = k
		}
	}

	gotFreq := spec.FreqOfBin(bestBin)
	require.InDelta(t, 1000.0, gotFreq, 50.0)
}
