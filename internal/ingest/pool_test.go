package ingest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zfogg/echomatch/internal/apierr"
	"github.com/zfogg/echomatch/internal/fingerprint"
	"github.com/zfogg/echomatch/internal/store"
)

type fakeDecoder struct {
	samples []float32
	err     error
}

func (f *fakeDecoder) Decode(ctx context.Context, path string) ([]float32, error) {
	return f.samples, f.err
}

func sineWave(freqHz, seconds float64, sampleRate int, amplitude float64) []float32 {
	n := int(seconds * float64(sampleRate))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}

func waitForDone(t *testing.T, p *Pool, want uint) {
	t.Helper()
	select {
	case got := <-p.Done():
		require.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ingestion to complete")
	}
}

func TestPool_SuccessfulIngestionReachesReady(t *testing.T) {
	s := store.NewMemoryStore()
	d := &fakeDecoder{samples: sineWave(1000, 30.0, fingerprint.SR, 0.5)}
	p := NewPool(1, d, s, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	id, err := p.Submit(ctx, store.RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"}, "fake.wav")
	require.NoError(t, err)

	waitForDone(t, p, id)

	state, ok := p.Status(id)
	require.True(t, ok)
	require.Equal(t, StateReady, state)

	rec, err := s.GetRecording(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Song", rec.Title)
}

func TestPool_SilenceFailsAndRollsBackRecording(t *testing.T) {
	s := store.NewMemoryStore()
	d := &fakeDecoder{samples: make([]float32, 10*fingerprint.SR)}
	p := NewPool(1, d, s, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	id, err := p.Submit(ctx, store.RecordingMeta{Title: "Silence", Artist: "Artist", SourceRef: "ref"}, "fake.wav")
	require.NoError(t, err)

	waitForDone(t, p, id)

	state, ok := p.Status(id)
	require.True(t, ok)
	require.Equal(t, StateFailed, state)

	_, err = s.GetRecording(ctx, id)
	require.Error(t, err, "a failed ingestion must leave no trace of the recording")
}

func TestPool_DecodeFailureRollsBack(t *testing.T) {
	s := store.NewMemoryStore()
	d := &fakeDecoder{err: apierr.DecodeFailed("boom")}
	p := NewPool(1, d, s, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	id, err := p.Submit(ctx, store.RecordingMeta{Title: "Bad", Artist: "Artist", SourceRef: "ref"}, "fake.wav")
	require.NoError(t, err)

	waitForDone(t, p, id)

	state, _ := p.Status(id)
	require.Equal(t, StateFailed, state)
}

type flakyStore struct {
	*store.MemoryStore
	failuresLeft int
}

func (f *flakyStore) Ingest(ctx context.Context, recordingID uint, fps []store.Fingerprint) error {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return apierr.StoreUnavailable("transient")
	}
	return f.MemoryStore.Ingest(ctx, recordingID, fps)
}

func TestPool_RetriesTransientStoreFailures(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), failuresLeft: 2}
	d := &fakeDecoder{samples: sineWave(440, 10.0, fingerprint.SR, 0.5)}
	p := NewPool(1, d, fs, 3, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	id, err := p.Submit(ctx, store.RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"}, "fake.wav")
	require.NoError(t, err)

	waitForDone(t, p, id)

	state, _ := p.Status(id)
	require.Equal(t, StateReady, state)
}

func TestPool_ExhaustedRetriesFailsRecording(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), failuresLeft: 100}
	d := &fakeDecoder{samples: sineWave(440, 10.0, fingerprint.SR, 0.5)}
	p := NewPool(1, d, fs, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	id, err := p.Submit(ctx, store.RecordingMeta{Title: "Song", Artist: "Artist", SourceRef: "ref"}, "fake.wav")
	require.NoError(t, err)

	waitForDone(t, p, id)

	state, _ := p.Status(id)
	require.Equal(t, StateFailed, state)
}

func TestPool_IsStoreUnavailableDistinguishesErrorKinds(t *testing.T) {
	var apiErr *apierr.APIError
	require.True(t, isStoreUnavailable(apierr.StoreUnavailable(""), &apiErr))

	apiErr = nil
	require.False(t, isStoreUnavailable(apierr.NotFound("recording"), &apiErr))

	apiErr = nil
	require.False(t, isStoreUnavailable(errors.New("plain error"), &apiErr))
}
