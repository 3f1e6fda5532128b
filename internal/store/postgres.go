package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zfogg/echomatch/internal/apierr"
	"github.com/zfogg/echomatch/internal/models"
)

// GormStore is the relational Store implementation (spec.md §9's "reference
// implementation"), backed by the recordings/fingerprints/queries tables and
// the indexes database.Migrate creates.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already-migrated *gorm.DB.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) AddRecording(ctx context.Context, meta RecordingMeta) (uint, error) {
	rec := models.Recording{
		Title:     meta.Title,
		Artist:    meta.Artist,
		Album:     meta.Album,
		Duration:  meta.Duration,
		SourceRef: meta.SourceRef,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, apierr.StoreUnavailable(err.Error())
	}
	return rec.ID, nil
}

// Ingest writes in chunks of at most BIns, inside a single transaction per
// call so a cancellation or mid-batch failure rolls back every row written
// for this recording attempt (spec.md §4.6).
func (s *GormStore) Ingest(ctx context.Context, recordingID uint, fingerprints []Fingerprint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, chunk := range chunkFingerprints(fingerprints, BIns) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rows := make([]models.Fingerprint, len(chunk))
			for i, fp := range chunk {
				rows[i] = models.Fingerprint{
					RecordingID: recordingID,
					Hash:        int64(fp.Hash),
					TimeOffset:  fp.TimeOffset,
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return apierr.StoreUnavailable(err.Error())
			}
		}
		return nil
	})
}

// Lookup probes in chunks of at most BLook, relying on idx_fingerprints_hash
// for the O(k + r) requirement.
func (s *GormStore) Lookup(ctx context.Context, hashes []uint32) ([]Posting, error) {
	var out []Posting

	for _, chunk := range chunkUint32(hashes, BLook) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		keys := make([]int64, len(chunk))
		for i, h := range chunk {
			keys[i] = int64(h)
		}

		var rows []models.Fingerprint
		if err := s.db.WithContext(ctx).Where("hash IN ?", keys).Find(&rows).Error; err != nil {
			return nil, apierr.StoreUnavailable(err.Error())
		}

		for _, row := range rows {
			out = append(out, Posting{
				RecordingID:      row.RecordingID,
				Hash:             uint32(row.Hash),
				StoredTimeOffset: row.TimeOffset,
			})
		}
	}

	return out, nil
}

func (s *GormStore) GetRecording(ctx context.Context, recordingID uint) (*RecordingMeta, error) {
	var rec models.Recording
	err := s.db.WithContext(ctx).First(&rec, recordingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("recording")
	}
	if err != nil {
		return nil, apierr.StoreUnavailable(err.Error())
	}

	return &RecordingMeta{
		ID:        rec.ID,
		Title:     rec.Title,
		Artist:    rec.Artist,
		Album:     rec.Album,
		Duration:  rec.Duration,
		SourceRef: rec.SourceRef,
	}, nil
}

// DeleteRecording cascades fingerprints via the FK constraint (spec.md §3).
func (s *GormStore) DeleteRecording(ctx context.Context, recordingID uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Recording{}, recordingID)
	if result.Error != nil {
		return apierr.StoreUnavailable(result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return apierr.NotFound("recording")
	}
	return nil
}

// RecordQuery writes an analytics row. Callers must swallow the error per
// spec.md §7; this method only reports it so the caller can log it.
func (s *GormStore) RecordQuery(ctx context.Context, q QueryRecord) error {
	row := models.Query{
		AudioDuration:      q.AudioDuration,
		MatchedRecordingID: q.MatchedRecordingID,
		Confidence:         q.Confidence,
		ProcessingTimeMS:   q.ProcessingTimeMS,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *GormStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := s.db.WithContext(ctx).Model(&models.Recording{}).Count(&stats.RecordingCount).Error; err != nil {
		return stats, apierr.StoreUnavailable(err.Error())
	}
	if err := s.db.WithContext(ctx).Model(&models.Fingerprint{}).Count(&stats.FingerprintCount).Error; err != nil {
		return stats, apierr.StoreUnavailable(err.Error())
	}
	if err := s.db.WithContext(ctx).Model(&models.Query{}).Count(&stats.QueryCount).Error; err != nil {
		return stats, apierr.StoreUnavailable(err.Error())
	}
	if err := s.db.WithContext(ctx).Model(&models.Query{}).Where("matched_recording_id IS NOT NULL").
		Count(&stats.SuccessfulQueryCount).Error; err != nil {
		return stats, apierr.StoreUnavailable(err.Error())
	}

	var avg struct{ Avg float64 }
	if err := s.db.WithContext(ctx).Model(&models.Query{}).
		Select("COALESCE(AVG(processing_time_ms), 0) as avg").Scan(&avg).Error; err != nil {
		return stats, apierr.StoreUnavailable(err.Error())
	}
	stats.AverageProcessingTimeMS = avg.Avg

	return stats, nil
}
