// Package models provides the public SDK types for DriftScope series data.
// This package is Apache 2.0 licensed, part of the public plugin SDK.
package models

import "time"

// SeriesStatus represents the learning state of a tracked series.
type SeriesStatus string

const (
	SeriesStatusLearning SeriesStatus = "learning" // Collecting samples, below min_samples
	SeriesStatusActive   SeriesStatus = "active"   // Baseline stable, detectors armed
	SeriesStatusStale    SeriesStatus = "stale"    // No samples within the staleness window
)

// SourceKind indicates where a series' samples originate.
type SourceKind string

const (
	SourceProbe     SourceKind = "probe"     // ICMP latency collector
	SourceIngest    SourceKind = "ingest"    // Pushed via the REST API
	SourceSynthetic SourceKind = "synthetic" // Seeded demo data
)

// Series represents one metric stream tracked by DriftScope.
type Series struct {
	ID         string       `json:"id" example:"probe.gateway.rtt_ms"`
	Name       string       `json:"name" example:"gateway round-trip"`
	Unit       string       `json:"unit,omitempty" example:"ms"`
	Source     SourceKind   `json:"source" example:"probe"`
	Status     SeriesStatus `json:"status" example:"active"`
	PointCount int64        `json:"point_count" example:"4821"`
	FirstSeen  time.Time    `json:"first_seen" example:"2026-08-01T08:00:00Z"`
	LastSeen   time.Time    `json:"last_seen" example:"2026-08-25T10:30:00Z"`
	Tags       []string     `json:"tags,omitempty"`
}

// SeriesPoint is a single sample on a series. Points travel over the event
// bus (topic "probe.sample" and friends) and through the ingest API.
type SeriesPoint struct {
	SeriesID  string    `json:"series_id" example:"probe.gateway.rtt_ms"`
	Timestamp time.Time `json:"timestamp" example:"2026-08-25T10:30:00Z"`
	Value     float64   `json:"value" example:"12.4"`
}

// PointArchive describes one compressed chunk of aged-out points. The raw
// samples live in a snappy-compressed blob; this header stays queryable.
type PointArchive struct {
	ID       int64     `json:"id"`
	SeriesID string    `json:"series_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Count    int       `json:"count"`
}
