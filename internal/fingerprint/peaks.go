package fingerprint

import "sort"

// PeakPicker extracts a sparse constellation of local-maxima peaks from a
// spectrogram.
type PeakPicker struct{}

// NewPeakPicker constructs a PeakPicker. The algorithm has no tunable state
// beyond the package's fixed constants (AMin, Neighborhood, PMax).
func NewPeakPicker() *PeakPicker {
	return &PeakPicker{}
}

// Pick finds every cell that is a strict local maximum over its
// Neighborhood x Neighborhood square (excluding the center), subject to the
// AMin amplitude floor, caps the result at PMax by magnitude (ties broken by
// earliest time then lowest frequency), and returns peaks ordered by time_s
// ascending (ties: frequency ascending).
func (pp *PeakPicker) Pick(spec *Spectrogram) []Peak {
	half := Neighborhood / 2
	numFrames := spec.NumFrames()
	bins := spec.Bins()

	var peaks []Peak

	for t := 0; t < numFrames; t++ {
		row := spec.Frames[t]
		for f := 0; f < bins; f++ {
			center := row[f]
			if center < AMin {
				continue
			}
			if isStrictLocalMax(spec, t, f, half, center) {
				peaks = append(peaks, Peak{
					FrequencyHz: spec.FreqOfBin(f),
					TimeS:       spec.TimeOfFrame(t),
					Magnitude:   center,
					frameIdx:    t,
					binIdx:      f,
				})
			}
		}
	}

	if len(peaks) > PMax {
		sort.Slice(peaks, func(i, j int) bool {
			if peaks[i].Magnitude != peaks[j].Magnitude {
				return peaks[i].Magnitude > peaks[j].Magnitude
			}
			if peaks[i].TimeS != peaks[j].TimeS {
				return peaks[i].TimeS < peaks[j].TimeS
			}
			return peaks[i].FrequencyHz < peaks[j].FrequencyHz
		})
		peaks = peaks[:PMax]
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].TimeS != peaks[j].TimeS {
			return peaks[i].TimeS < peaks[j].TimeS
		}
		return peaks[i].FrequencyHz < peaks[j].FrequencyHz
	})

	return peaks
}

// isStrictLocalMax reports whether spec.Frames[t][f] (already fetched as
// center) strictly exceeds every in-bounds neighbor in the closed square
// [t-half..t+half] x [f-half..f+half], excluding the center itself. Cells
// outside the matrix are treated as absent, never as zero, so a peak near
// the spectrogram's edges is not disqualified by a phantom neighbor.
func isStrictLocalMax(spec *Spectrogram, t, f, half int, center float64) bool {
	numFrames := spec.NumFrames()
	bins := spec.Bins()

	for dt := -half; dt <= half; dt++ {
		nt := t + dt
		if nt < 0 || nt >= numFrames {
			continue
		}
		row := spec.Frames[nt]
		for df := -half; df <= half; df++ {
			if dt == 0 && df == 0 {
				continue
			}
			nf := f + df
			if nf < 0 || nf >= bins {
				continue
			}
			if row[nf] >= center {
				return false
			}
		}
	}
	return true
}
