// Package ingest implements the bounded-concurrency ingestion worker pool
// (spec.md §4.6, §5): each worker owns one decode -> spectrogram -> peak ->
// hash -> persist pipeline end to end, grounded in the teacher's buffered
// job-channel worker pool shape.
package ingest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zfogg/echomatch/internal/apierr"
	"github.com/zfogg/echomatch/internal/decoder"
	"github.com/zfogg/echomatch/internal/fingerprint"
	"github.com/zfogg/echomatch/internal/store"
)

// State is one step of the per-recording ingestion state machine (spec.md
// §4.6). Transitions are sequential; there is no path back to an earlier
// state.
type State string

const (
	StateQueued          State = "queued"
	StateDecoding        State = "decoding"
	StateSpectrogramming State = "spectrogramming"
	StatePeaking         State = "peaking"
	StateHashing         State = "hashing"
	StatePersisting      State = "persisting"
	StateReady           State = "ready"
	StateFailed          State = "failed"
)

// DefaultWorkers is C_ING, the default bounded ingestion concurrency
// (spec.md §5).
const DefaultWorkers = 2

// DefaultMaxRetries is R_MAX, the default number of persist retries on a
// transient store failure (spec.md §7).
const DefaultMaxRetries = 3

// Job is one queued ingestion attempt.
type Job struct {
	RecordingID uint
	SourcePath  string
}

// Pool is a bounded worker pool pulling Jobs off a buffered channel. Status
// lookups and the completion signal channel let callers (and tests) observe
// ingestion progress without polling the store.
type Pool struct {
	jobs    chan Job
	workers int

	decoder        decoder.Decoder
	spectrogrammer *fingerprint.Spectrogrammer
	peakPicker     *fingerprint.PeakPicker
	pairHasher     *fingerprint.PairHasher
	store          store.Store
	maxRetries     int
	logger         *zap.Logger

	statusMu sync.RWMutex
	status   map[uint]State

	done chan uint
	wg   sync.WaitGroup
}

// NewPool constructs a Pool. workers and maxRetries fall back to
// DefaultWorkers/DefaultMaxRetries when <= 0.
func NewPool(workers int, d decoder.Decoder, s store.Store, maxRetries int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Pool{
		jobs:           make(chan Job, workers*4),
		workers:        workers,
		decoder:        d,
		spectrogrammer: fingerprint.NewSpectrogrammer(fingerprint.SR),
		peakPicker:     fingerprint.NewPeakPicker(),
		pairHasher:     fingerprint.NewPairHasher(),
		store:          s,
		maxRetries:     maxRetries,
		logger:         log,
		status:         make(map[uint]State),
		done:           make(chan uint, workers*4),
	}
}

// Start launches the worker goroutines. Workers run until ctx is cancelled
// or Stop closes the job channel.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

// Stop closes the job channel and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Done reports recording ids as their ingestion reaches a terminal state
// (Ready or Failed); tests use this instead of polling Status.
func (p *Pool) Done() <-chan uint {
	return p.done
}

// Submit creates the recording row and queues its fingerprint pipeline.
// Returns the assigned recording id immediately; ingestion runs
// asynchronously on a pool worker.
func (p *Pool) Submit(ctx context.Context, meta store.RecordingMeta, sourcePath string) (uint, error) {
	recordingID, err := p.store.AddRecording(ctx, meta)
	if err != nil {
		return 0, err
	}

	p.setStatus(recordingID, StateQueued)

	select {
	case p.jobs <- Job{RecordingID: recordingID, SourcePath: sourcePath}:
		return recordingID, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Status returns the current ingestion state of recordingID, if known.
func (p *Pool) Status(recordingID uint) (State, bool) {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	s, ok := p.status[recordingID]
	return s, ok
}

func (p *Pool) setStatus(recordingID uint, s State) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status[recordingID] = s
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(ctx, job)
		}
	}
}

// process runs one recording's pipeline through to Ready or Failed. On any
// failure, the recording (and any fingerprints already persisted for it) is
// removed so the store never surfaces a partially-ingested recording
// (spec.md §4.6 atomicity).
func (p *Pool) process(ctx context.Context, job Job) {
	log := p.logger.With(zap.Uint("recording_id", job.RecordingID))

	p.setStatus(job.RecordingID, StateDecoding)
	samples, err := p.decoder.Decode(ctx, job.SourcePath)
	if err != nil {
		p.fail(ctx, job, log, "decode failed", err)
		return
	}

	p.setStatus(job.RecordingID, StateSpectrogramming)
	spec, err := p.spectrogrammer.Compute(samples)
	if err != nil {
		p.fail(ctx, job, log, "spectrogram failed", err)
		return
	}

	p.setStatus(job.RecordingID, StatePeaking)
	peaks := p.peakPicker.Pick(spec)

	p.setStatus(job.RecordingID, StateHashing)
	fps := p.pairHasher.Hash(peaks)
	if len(fps) == 0 {
		p.fail(ctx, job, log, "no fingerprints extracted", apierr.NoFingerprints(""))
		return
	}

	storeFps := make([]store.Fingerprint, len(fps))
	for i, fp := range fps {
		storeFps[i] = store.Fingerprint{Hash: fp.Hash, TimeOffset: fp.TimeOffset}
	}

	p.setStatus(job.RecordingID, StatePersisting)
	if err := p.ingestWithRetry(ctx, job.RecordingID, storeFps, log); err != nil {
		p.fail(ctx, job, log, "persist failed", err)
		return
	}

	p.setStatus(job.RecordingID, StateReady)
	log.Info("recording ready", zap.Int("fingerprint_count", len(storeFps)))
	p.signalDone(job.RecordingID)
}

// ingestWithRetry retries Ingest on apierr.StoreUnavailable with exponential
// backoff: one initial attempt plus up to maxRetries retries (spec.md §7).
func (p *Pool) ingestWithRetry(ctx context.Context, recordingID uint, fps []store.Fingerprint, log *zap.Logger) error {
	var lastErr error
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		err := p.store.Ingest(ctx, recordingID, fps)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *apierr.APIError
		if !isStoreUnavailable(err, &apiErr) {
			return err
		}

		if attempt == p.maxRetries {
			break
		}

		log.Warn("store unavailable, retrying ingest",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}

	return lastErr
}

func isStoreUnavailable(err error, apiErr **apierr.APIError) bool {
	ae, ok := err.(*apierr.APIError)
	if !ok {
		return false
	}
	*apiErr = ae
	return ae.Code == apierr.ErrStoreUnavailable
}

func (p *Pool) fail(ctx context.Context, job Job, log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))

	// Best-effort cleanup; a delete failure here is logged but does not
	// change the outcome — the recording is still marked Failed. In that
	// case the recording and any fingerprints already persisted for it stay
	// in the store and remain visible to Lookup.
	if delErr := p.store.DeleteRecording(ctx, job.RecordingID); delErr != nil {
		log.Error("failed to roll back recording after ingestion failure", zap.Error(delErr))
	}

	p.setStatus(job.RecordingID, StateFailed)
	p.signalDone(job.RecordingID)
}

func (p *Pool) signalDone(recordingID uint) {
	select {
	case p.done <- recordingID:
	default:
	}
}
