package fingerprint

import "math"

// PairHasher turns a time-sorted peak list into (hash, anchor_time)
// fingerprints by pairing each peak with up to Fanout later peaks within the
// [DTMin, DTMax] time window.
type PairHasher struct{}

// NewPairHasher constructs a PairHasher.
func NewPairHasher() *PairHasher {
	return &PairHasher{}
}

// Hash pairs peaks (already ordered by time_s ascending, as PeakPicker.Pick
// delivers them) into fingerprints. For anchor i, targets j = i+1, i+2, ...
// are scanned in order; the scan skips while dt < DTMin and stops once
// dt > DTMax, taking at most the first Fanout valid targets.
func (ph *PairHasher) Hash(peaks []Peak) []Fingerprint {
	var fps []Fingerprint

	for i := range peaks {
		anchor := peaks[i]
		found := 0
		for j := i + 1; j < len(peaks) && found < Fanout; j++ {
			target := peaks[j]
			dt := target.TimeS - anchor.TimeS
			if dt < DTMin {
				continue
			}
			if dt > DTMax {
				break
			}

			h := pairHash(anchor.FrequencyHz, target.FrequencyHz, dt)
			fps = append(fps, Fingerprint{
				Hash:       h,
				TimeOffset: anchor.TimeS,
			})
			found++
		}
	}

	return fps
}

// pairHash computes the 32-bit polynomial rolling hash of quantized
// (anchor_freq, target_freq, time_delta). This must be reproduced exactly:
// q1 = floor(fAnchor/10)*10, q2 = floor(fTarget/10)*10, qd = floor(dt*100)*10
// (the nearest centisecond, scaled by 1000), combined over unsigned 32-bit
// arithmetic as h <- h*31 + field, starting from h = 0.
func pairHash(fAnchor, fTarget, dt float64) uint32 {
	q1 := uint32(math.Floor(fAnchor/FreqQuantHz) * FreqQuantHz)
	q2 := uint32(math.Floor(fTarget/FreqQuantHz) * FreqQuantHz)
	qd := uint32(math.Floor(dt*100) * 10)

	var h uint32
	h = h*31 + q1
	h = h*31 + q2
	h = h*31 + qd
	return h
}
