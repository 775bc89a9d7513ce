// Package stream is the headless display surface: it tracks what a screen
// would show and writes one record per attempt.
package stream

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-cat-gallery/models"
)

// Surface implements the display and trigger contracts of the controller.
type Surface struct {
	mu sync.Mutex

	imageSource  string
	imageAlt     string
	errorText    string
	errorVisible bool
	enabled      bool
	label        string

	writer RecordWriter
	now    func() time.Time
}

// NewSurface builds a surface writing records to w.
func NewSurface(w RecordWriter) *Surface {
	return &Surface{
		enabled: true,
		writer:  w,
		now:     time.Now,
	}
}

func (s *Surface) SetImageSource(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageSource = url
}

func (s *Surface) SetImageAlt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageAlt = text
}

func (s *Surface) SetErrorText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorText = text
}

func (s *Surface) SetErrorVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorVisible = visible
}

func (s *Surface) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *Surface) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Enabled reports whether the trigger currently accepts activations.
func (s *Surface) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Snapshot returns what the surface currently shows.
func (s *Surface) Snapshot() models.DisplayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := models.DisplayRecord{
		Time:     s.now(),
		ImageURL: s.imageSource,
		Alt:      s.imageAlt,
	}
	switch {
	case s.errorVisible:
		rec.Status = models.StatusFailed.String()
		rec.Error = s.errorText
	case !s.enabled:
		rec.Status = models.StatusLoading.String()
	case s.imageSource != "":
		rec.Status = models.StatusSucceeded.String()
	default:
		rec.Status = models.StatusIdle.String()
	}
	return rec
}

// Flush writes the current state as one record.
func (s *Surface) Flush() (models.DisplayRecord, error) {
	rec := s.Snapshot()
	if err := s.writer.Write(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Requester is the controller side the headless loop drives.
type Requester interface {
	RequestNewImage(ctx context.Context) (models.FetchAttempt, bool)
	OnImageDisplayFailure()
}

// ImageLoader downloads and decodes an image.
type ImageLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// RunOptions control the headless loop.
type RunOptions struct {
	// Count is the number of attempts; 0 runs until ctx is done.
	Count    int
	Interval time.Duration
	// Loader, when set, verifies every fetched image like a browser would
	// by downloading and decoding it.
	Loader ImageLoader
}

// Summary holds the overall result of a headless run.
type Summary struct {
	Attempts  int
	Succeeded int
	Failed    int
	Ignored   int
	StartTime time.Time
	EndTime   time.Time
}

// Run drives sequential attempts and flushes one record after each.
func Run(ctx context.Context, ctrl Requester, surface *Surface, opts RunOptions) (*Summary, error) {
	summary := &Summary{StartTime: time.Now()}
	defer func() { summary.EndTime = time.Now() }()

	for i := 0; opts.Count == 0 || i < opts.Count; i++ {
		if i > 0 && opts.Interval > 0 {
			if !wait(ctx, opts.Interval) {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		attempt, started := ctrl.RequestNewImage(ctx)
		if !started {
			summary.Ignored++
			continue
		}
		summary.Attempts++

		if attempt.Status == models.StatusSucceeded && opts.Loader != nil {
			verify(ctx, ctrl, opts.Loader, attempt.ImageURL)
		}

		rec, err := surface.Flush()
		if err != nil {
			return summary, fmt.Errorf("write record: %w", err)
		}
		if rec.Status == models.StatusFailed.String() {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary, nil
}

// verify loads the image and reports a failure to the controller. A load
// cut off by ctx says nothing about the image and is not reported.
func verify(ctx context.Context, ctrl Requester, loader ImageLoader, url string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := loader.Load(ctx, url); err != nil {
		if ctx.Err() != nil {
			slog.Debug("image verification interrupted", slog.String("url", url))
			return
		}
		slog.Warn("image failed to load",
			slog.String("url", url),
			slog.Any("error", err),
		)
		ctrl.OnImageDisplayFailure()
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
