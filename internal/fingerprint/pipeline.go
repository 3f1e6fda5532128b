package fingerprint

import "github.com/zfogg/echomatch/internal/apierr"

// Fingerprinter composes the Spectrogrammer, PeakPicker, and PairHasher into
// the end-to-end DSP pipeline: raw mono samples in, a stream of
// (hash, time_offset) fingerprints out.
type Fingerprinter struct {
	spectrogrammer *Spectrogrammer
	peakPicker     *PeakPicker
	pairHasher     *PairHasher
}

// NewFingerprinter constructs a Fingerprinter over samples at the given
// sample rate. Production callers always pass SR (22050); the decoder
// collaborator is responsible for resampling before this point.
func NewFingerprinter(sampleRate int) *Fingerprinter {
	return &Fingerprinter{
		spectrogrammer: NewSpectrogrammer(sampleRate),
		peakPicker:     NewPeakPicker(),
		pairHasher:     NewPairHasher(),
	}
}

// Result carries a fingerprinting pass's output plus the intermediate counts
// the ingestion pipeline and its metrics want to observe.
type Result struct {
	Fingerprints []Fingerprint
	PeakCount    int
	FrameCount   int
}

// Generate runs the full pipeline over samples. Fails with
// apierr.InputTooShort (propagated from the spectrogrammer) or
// apierr.NoFingerprints when the pipeline produces zero hashes (silence or a
// degenerate, peak-free input).
func (fp *Fingerprinter) Generate(samples []float32) (*Result, error) {
	spec, err := fp.spectrogrammer.Compute(samples)
	if err != nil {
		return nil, err
	}

	peaks := fp.peakPicker.Pick(spec)
	fingerprints := fp.pairHasher.Hash(peaks)

	if len(fingerprints) == 0 {
		return nil, apierr.NoFingerprints("")
	}

	return &Result{
		Fingerprints: fingerprints,
		PeakCount:    len(peaks),
		FrameCount:   spec.NumFrames(),
	}, nil
}
