// Package models defines the persisted-state layout of the fingerprint
// identification service: recordings, their fingerprints, and the analytics
// trail left by identify calls.
package models

import "time"

// Recording is an ingested, fully fingerprinted piece of audio. Its id is a
// stable integer identity; (title, artist) is not required to be unique.
type Recording struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Artist    string    `gorm:"not null" json:"artist"`
	Album     *string   `json:"album,omitempty"`
	Duration  *float64  `json:"duration,omitempty"`
	SourceRef string    `gorm:"column:source_ref;not null" json:"source_ref"`
	CreatedAt time.Time `json:"created_at"`

	Fingerprints []Fingerprint `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (Recording) TableName() string {
	return "recordings"
}

// Fingerprint is one (hash, time_offset) record produced by the pair hasher
// for a single recording. Hash is a 32-bit unsigned value widened losslessly
// into a 64-bit signed column with the high bits zero (spec.md §6 wire format).
type Fingerprint struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RecordingID uint    `gorm:"column:recording_id;not null;index:idx_fingerprints_recording_offset,priority:1" json:"recording_id"`
	Hash        int64   `gorm:"column:hash;not null;index:idx_fingerprints_hash" json:"hash"`
	TimeOffset  float64 `gorm:"column:time_offset;not null;index:idx_fingerprints_recording_offset,priority:2" json:"time_offset"`
}

func (Fingerprint) TableName() string {
	return "fingerprints"
}

// Query is an analytics row recorded for every identify attempt, successful
// or not. Recording analytics must never fail the user-facing operation
// (spec.md §7) — writers of this model swallow their own errors.
type Query struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AudioDuration      float64   `gorm:"column:audio_duration" json:"audio_duration"`
	MatchedRecordingID *uint     `gorm:"column:matched_recording_id" json:"matched_recording_id,omitempty"`
	Confidence         *float64  `gorm:"column:confidence" json:"confidence,omitempty"`
	ProcessingTimeMS   int64     `gorm:"column:processing_time_ms" json:"processing_time_ms"`
	CreatedAt          time.Time `json:"created_at"`
}

func (Query) TableName() string {
	return "queries"
}
