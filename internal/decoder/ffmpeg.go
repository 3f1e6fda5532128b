// Package decoder implements the decoder collaborator (spec.md §6): turning
// an arbitrary audio source into the mono float32 PCM stream at a fixed
// sample rate the fingerprinter pipeline requires. Out of core scope per
// spec.md §1, but given a concrete implementation so the core has something
// real to run against.
package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/zfogg/echomatch/internal/apierr"
	"github.com/zfogg/echomatch/internal/fingerprint"
)

// Decoder satisfies the §6 decoder contract: decode(source) -> samples at
// 22050Hz mono f32.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]float32, error)
}

// FFmpegDecoder shells out to ffmpeg to resample and downmix arbitrary
// containers into raw little-endian float32 PCM, matching the teacher's
// ffmpeg invocation shape (exec.CommandContext piping stdout).
type FFmpegDecoder struct {
	binary string
}

// NewFFmpegDecoder constructs a FFmpegDecoder using the given ffmpeg binary
// path (or "ffmpeg" to resolve from $PATH).
func NewFFmpegDecoder(binary string) *FFmpegDecoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegDecoder{binary: binary}
}

// Decode runs `ffmpeg -i <path> -ac 1 -ar 22050 -f f32le -` and parses the
// resulting stdout as a stream of little-endian float32 samples.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) ([]float32, error) {
	cmd := exec.CommandContext(ctx, d.binary,
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", fingerprint.SR),
		"-f", "f32le",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return nil, classifyFFmpegError(stderr.String(), err)
	}

	raw := stdout.Bytes()
	if len(raw) == 0 {
		return nil, apierr.NoAudioStream("decoded stream contained no audio samples")
	}
	if len(raw)%4 != 0 {
		raw = raw[:len(raw)-(len(raw)%4)]
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}

	return samples, nil
}

// classifyFFmpegError maps ffmpeg's stderr text to the §6 decoder error
// kinds. ffmpeg reports both "unsupported" and "missing stream" conditions
// as a nonzero exit with a descriptive stderr line; there is no structured
// exit-code taxonomy to rely on.
func classifyFFmpegError(stderrText string, runErr error) error {
	lower := strings.ToLower(stderrText)

	switch {
	case strings.Contains(lower, "does not contain any stream"),
		strings.Contains(lower, "no audio"),
		strings.Contains(lower, "stream map"):
		return apierr.NoAudioStream(firstLine(stderrText))
	case strings.Contains(lower, "invalid data"),
		strings.Contains(lower, "unknown format"),
		strings.Contains(lower, "unsupported"):
		return apierr.UnsupportedFormat(firstLine(stderrText))
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return apierr.DecodeFailed(firstLine(stderrText))
		}
		return apierr.DecodeFailed(runErr.Error())
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	if s == "" {
		return "ffmpeg decode failed"
	}
	return s
}
