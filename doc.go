// Package echomatch is an audio fingerprint identification service built
// around a constellation-map (Shazam-style) fingerprinter, a histogram
// matcher, and a pluggable fingerprint store.

// The actual API documentation is organized into subpackages:

// - internal/fingerprint: spectrogram, peak-picking, and hashing pipeline
// - internal/match: histogram-vote matcher over a fingerprint store
// - internal/store: fingerprint store contract plus memory/Postgres/cache implementations
// - internal/decoder: ffmpeg-backed audio decoding to mono f32 PCM
// - internal/ingest: bounded worker pool driving the ingestion state machine
// - internal/service: Ingest/Identify/Admin API wiring the above together
// - internal/config: server and CLI runtime configuration
// - internal/container: dependency wiring for cmd/server
// - internal/database: Postgres connection and migrations
// - internal/logger, internal/metrics, internal/telemetry, internal/middleware: ambient stack

// See the individual package documentation for detailed API reference.
package echomatch
