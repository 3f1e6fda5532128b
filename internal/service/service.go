// Package service wires the Fingerprinter, Matcher, and Store into the
// Ingest/Identify/Admin API of spec.md §6, grounded in the teacher's
// fingerprint orchestration and internal/container DI conventions.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zfogg/echomatch/internal/decoder"
	"github.com/zfogg/echomatch/internal/fingerprint"
	"github.com/zfogg/echomatch/internal/ingest"
	"github.com/zfogg/echomatch/internal/match"
	"github.com/zfogg/echomatch/internal/store"
)

// DefaultIdentifyTimeout is identification's soft wall-clock budget
// (spec.md §5).
const DefaultIdentifyTimeout = 10 * time.Second

// Service is the Ingest/Identify/Admin API (spec.md §6).
type Service struct {
	pool            *ingest.Pool
	matcher         *match.Matcher
	store           store.Store
	decoder         decoder.Decoder
	fingerprinter   *fingerprint.Fingerprinter
	logger          *zap.Logger
	identifyTimeout time.Duration
}

// New constructs a Service over its collaborators. identifyTimeout <= 0
// falls back to DefaultIdentifyTimeout.
func New(pool *ingest.Pool, matcher *match.Matcher, s store.Store, d decoder.Decoder, identifyTimeout time.Duration, log *zap.Logger) *Service {
	if identifyTimeout <= 0 {
		identifyTimeout = DefaultIdentifyTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		pool:            pool,
		matcher:         matcher,
		store:           s,
		decoder:         d,
		fingerprinter:   fingerprint.NewFingerprinter(fingerprint.SR),
		logger:          log,
		identifyTimeout: identifyTimeout,
	}
}

// RecordingMetadata is the caller-supplied metadata for a new recording.
type RecordingMetadata struct {
	Title    string
	Artist   string
	Album    *string
	Duration *float64
}

// Add ingests a new recording from an audio source path (Ingest API,
// spec.md §6). Returns the assigned recording id immediately; fingerprinting
// and persistence continue asynchronously on the ingestion pool.
func (s *Service) Add(ctx context.Context, meta RecordingMetadata, sourcePath string) (uint, error) {
	return s.pool.Submit(ctx, store.RecordingMeta{
		Title:     meta.Title,
		Artist:    meta.Artist,
		Album:     meta.Album,
		Duration:  meta.Duration,
		SourceRef: sourcePath,
	}, sourcePath)
}

// IdentifyResult is a successful identification (spec.md §6).
type IdentifyResult struct {
	RecordingID           uint
	Confidence            float64
	AlignedMatches        int
	QueryFingerprintCount int
	ProcessingTimeMS      int64
}

// Identify decodes and fingerprints audioSource, then matches it against the
// store (Identify API, spec.md §6). Every attempt — successful, no-match, or
// failed — is recorded to the queries analytics table; analytics failures
// are logged and swallowed (spec.md §7).
func (s *Service) Identify(ctx context.Context, audioSource string) (*IdentifyResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.identifyTimeout)
	defer cancel()

	samples, err := s.decoder.Decode(ctx, audioSource)
	if err != nil {
		s.recordQuery(ctx, 0, nil, time.Since(start).Milliseconds())
		return nil, err
	}

	result, err := s.fingerprinter.Generate(samples)
	if err != nil {
		s.recordQuery(ctx, float64(len(samples))/float64(fingerprint.SR), nil, time.Since(start).Milliseconds())
		return nil, err
	}

	query := make([]match.QueryFingerprint, len(result.Fingerprints))
	for i, fp := range result.Fingerprints {
		query[i] = match.QueryFingerprint{Hash: fp.Hash, QueryTimeOffset: fp.TimeOffset}
	}

	audioDuration := float64(len(samples)) / float64(fingerprint.SR)

	matched, matchErr := s.matcher.Identify(ctx, query)
	processingMS := time.Since(start).Milliseconds()

	s.recordQuery(ctx, audioDuration, matched, processingMS)

	if matchErr != nil {
		return nil, matchErr
	}

	return &IdentifyResult{
		RecordingID:           matched.RecordingID,
		Confidence:            matched.Confidence,
		AlignedMatches:        matched.Aligned,
		QueryFingerprintCount: matched.QueryFingerprintCount,
		ProcessingTimeMS:      processingMS,
	}, nil
}

// recordQuery writes the analytics row for one identify attempt, swallowing
// any failure per spec.md §7.
func (s *Service) recordQuery(ctx context.Context, audioDuration float64, matched *match.Result, processingMS int64) {
	rec := store.QueryRecord{
		AudioDuration:    audioDuration,
		ProcessingTimeMS: processingMS,
	}
	if matched != nil {
		id := matched.RecordingID
		conf := matched.Confidence
		rec.MatchedRecordingID = &id
		rec.Confidence = &conf
	}

	if err := s.store.RecordQuery(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("failed to record query analytics", zap.Error(err))
	}
}

// Delete cascades a recording's fingerprints (Admin API, spec.md §6).
func (s *Service) Delete(ctx context.Context, recordingID uint) error {
	return s.store.DeleteRecording(ctx, recordingID)
}

// Stats reports store-wide counters (Admin API, spec.md §6).
func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	return s.store.Stats(ctx)
}

// IngestionStatus reports a queued recording's position in the §4.6 state
// machine.
func (s *Service) IngestionStatus(recordingID uint) (ingest.State, bool) {
	return s.pool.Status(recordingID)
}
