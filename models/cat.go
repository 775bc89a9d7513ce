// Package models defines data structures for the cat gallery.
package models

import "time"

// CatImage represents one record of the image-search response.
type CatImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Status is the lifecycle state of a FetchAttempt.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchAttempt is one request-response cycle against the image endpoint.
// ImageURL is set only when Succeeded, ErrorMessage and Kind only when Failed.
type FetchAttempt struct {
	Status       Status
	ImageURL     string
	ErrorMessage string
	Kind         string
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration reports how long the attempt took, or zero while it is running.
func (a FetchAttempt) Duration() time.Duration {
	if a.StartedAt.IsZero() || a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}

// DisplayRecord is a snapshot of what a display surface shows.
type DisplayRecord struct {
	Time     time.Time `csv:"time" json:"time"`
	Status   string    `csv:"status" json:"status"`
	ImageURL string    `csv:"image_url" json:"image_url"`
	Alt      string    `csv:"alt" json:"alt"`
	Error    string    `csv:"error" json:"error,omitempty"`
}
