package fingerprint

// Fixed DSP constants. These are not configuration: spec.md frames them as
// fixed constants because the spectrogram indexing convention and hash
// function must be reproduced bit-for-bit to stay compatible with an
// existing store.
const (
	// SR is the sample rate the decoder collaborator must resample to.
	SR = 22050

	// W is the FFT window size in samples.
	W = 4096

	// H is the hop size in samples (75% overlap at W=4096).
	H = 1024

	// AMin is the amplitude floor a cell must clear before it is even
	// considered as a peak candidate. The source carries two conflicting
	// conventions (10 and 15); this implementation fixes 15, the operating
	// point that also does format conversion (spec.md §9).
	AMin = 15.0

	// Neighborhood is the odd/even span in both time and frequency bins
	// that a peak must strictly dominate.
	Neighborhood = 20

	// PMax bounds the number of peaks kept per recording.
	PMax = 10000

	// DTMin and DTMax bound the anchor->target time gap considered when
	// pairing peaks.
	DTMin = 0.5
	DTMax = 3.0

	// Fanout is the number of target peaks paired with each anchor. The
	// source carries two conflicting conventions (15 and 3); this fixes 3,
	// matching the AMin=15 operating point (spec.md §9).
	Fanout = 3

	// FreqQuantHz and TimeQuantS are the quantization bin widths applied
	// before hashing. Coarse enough to survive small spectral shifts, fine
	// enough to remain selective.
	FreqQuantHz = 10.0
	TimeQuantS  = 0.01
)
