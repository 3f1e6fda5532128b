package fingerprint

import (
	"math"
	"math/cmplx"

	"github.com/zfogg/echomatch/internal/apierr"
)

// hannWindow returns a length-n Hann window: w[n] = 0.5*(1 - cos(2*pi*n/(n-1))).
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

var window = hannWindow(W)

// Spectrogrammer turns a finite sequence of mono float32 samples into a
// magnitude time-frequency matrix via a windowed, hopped FFT.
type Spectrogrammer struct {
	sampleRate int
}

// NewSpectrogrammer constructs a Spectrogrammer for the given sample rate.
// Callers almost always want SR (22050); the parameter exists so tests can
// exercise the framing math at other rates without touching the hash
// convention (which is defined in terms of physical Hz/seconds, not bins).
func NewSpectrogrammer(sampleRate int) *Spectrogrammer {
	return &Spectrogrammer{sampleRate: sampleRate}
}

// Compute windows and FFTs samples into a Spectrogram. Frames whose input
// window would extend past the signal end are omitted; no zero padding.
// Fails with apierr.InputTooShort when fewer than W samples are available.
func (sg *Spectrogrammer) Compute(samples []float32) (*Spectrogram, error) {
	if len(samples) < W {
		return nil, apierr.InputTooShort("need at least 4096 samples to form one spectrogram frame")
	}

	numFrames := (len(samples)-W)/H + 1
	frames := make([][]float64, numFrames)

	buf := make([]complex128, W)
	for t := 0; t < numFrames; t++ {
		start := t * H
		for n := 0; n < W; n++ {
			buf[n] = complex(float64(samples[start+n])*window[n], 0)
		}
		spectrum := fft(buf)

		bins := W / 2
		mag := make([]float64, bins)
		for k := 0; k < bins; k++ {
			mag[k] = cmplx.Abs(spectrum[k])
		}
		frames[t] = mag
	}

	return &Spectrogram{Frames: frames, SampleRate: sg.sampleRate}, nil
}

// fft computes the discrete Fourier transform of x (len(x) must be a power
// of two, which holds for W=4096) via an iterative radix-2 Cooley-Tukey
// transform with bit-reversal permutation.
func fft(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j &^= bit
		}
		j |= bit
		if i < j {
			out[i], out[j] = out[j], out[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angle := -2 * math.Pi / float64(size)
		wSize := complex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				u := out[start+k]
				v := out[start+k+half] * w
				out[start+k] = u + v
				out[start+k+half] = u - v
				w *= wSize
			}
		}
	}

	return out
}
