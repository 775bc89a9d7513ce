// Package gallery drives fetch attempts against the image endpoint and
// reflects their state onto injected display and trigger surfaces.
package gallery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-cat-gallery/models"
	"github.com/aluiziolira/go-cat-gallery/parser"
)

// Display is the area showing the fetched image or an error message.
// A display that fails to render an image source reports it through
// Controller.OnImageDisplayFailure.
type Display interface {
	SetImageSource(url string)
	SetImageAlt(text string)
	SetErrorText(text string)
	SetErrorVisible(visible bool)
}

// Trigger is the control initiating a new fetch attempt. Activations are
// delivered by calling Controller.RequestNewImage and must be dropped by
// the surface while it is disabled.
type Trigger interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// Searcher issues the image-search request.
type Searcher interface {
	Search(ctx context.Context) ([]models.CatImage, error)
}

// Options tune a Controller. The zero value is usable.
type Options struct {
	// MinLoading keeps the loading state visible for at least this long
	// after a successful fetch. Zero disables the pause.
	MinLoading time.Duration
	Metrics    *Metrics
	Logger     *slog.Logger
}

// Controller runs at most one FetchAttempt at a time.
type Controller struct {
	searcher   Searcher
	display    Display
	trigger    Trigger
	minLoading time.Duration
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex // guards loading and current
	loading bool
	current models.FetchAttempt

	// surfaceMu serializes every batch of surface mutations.
	surfaceMu sync.Mutex
}

// New builds a controller over the given searcher and surfaces.
func New(searcher Searcher, display Display, trigger Trigger, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	minLoading := opts.MinLoading
	if minLoading < 0 {
		minLoading = 0
	}
	return &Controller{
		searcher:   searcher,
		display:    display,
		trigger:    trigger,
		minLoading: minLoading,
		metrics:    opts.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestNewImage drives one attempt from trigger to its terminal display
// state and returns it. When another attempt is still loading, or ctx is
// already done, the call is ignored and reports false. Every failure is handled here: it is shown on
// the display and never returned. The trigger is re-enabled on every path.
func (c *Controller) RequestNewImage(ctx context.Context) (models.FetchAttempt, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		c.logger.Debug("request skipped, context done")
		return c.Current(), false
	}

	c.mu.Lock()
	if c.loading {
		current := c.current
		c.mu.Unlock()
		c.metrics.IncIgnored()
		c.logger.Debug("trigger ignored while loading")
		return current, false
	}
	c.loading = true
	attempt := models.FetchAttempt{
		Status:    models.StatusLoading,
		StartedAt: c.now(),
	}
	c.current = attempt
	c.mu.Unlock()

	defer c.exitLoading()
	c.enterLoading()

	imageURL, err := c.fetch(ctx)
	if err != nil {
		attempt = c.fail(attempt, err)
	} else {
		attempt = c.succeed(attempt, imageURL)
		c.hold(ctx)
	}
	attempt.FinishedAt = c.now()

	c.mu.Lock()
	c.current = attempt
	c.mu.Unlock()
	return attempt, true
}

// OnImageDisplayFailure reports that the display could not render the image
// source it was given. The trigger is left untouched.
func (c *Controller) OnImageDisplayFailure() {
	c.logger.Error("failed to load cat image")
	c.metrics.IncDisplayFailure()
	c.metrics.IncError(KindImageDecode)

	c.surfaceMu.Lock()
	defer c.surfaceMu.Unlock()

	c.showError(MessageImageDecode)
	c.resetImage()

	c.mu.Lock()
	if !c.loading {
		c.current.Status = models.StatusFailed
		c.current.ImageURL = ""
		c.current.Kind = KindImageDecode
		c.current.ErrorMessage = MessageImageDecode
		c.current.Err = nil
	}
	c.mu.Unlock()
}

// Current returns a snapshot of the latest attempt.
func (c *Controller) Current() models.FetchAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Loading reports whether an attempt is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) fetch(ctx context.Context) (string, error) {
	start := c.now()
	images, err := c.searcher.Search(ctx)
	c.metrics.ObserveDuration(c.now().Sub(start))
	if err != nil {
		return "", err
	}
	return parser.FirstURL(images)
}

func (c *Controller) fail(attempt models.FetchAttempt, err error) models.FetchAttempt {
	kind := Kind(err)
	message := Message(kind)

	if kind == KindCanceled {
		c.logger.Debug("fetch canceled", slog.Any("error", err))
	} else {
		c.logger.Error("error fetching cat image",
			slog.String("kind", kind),
			slog.Any("error", err),
		)
		c.metrics.IncError(kind)
	}
	c.metrics.IncRequest("failure")

	c.surfaceMu.Lock()
	c.showError(message)
	c.resetImage()
	c.surfaceMu.Unlock()

	attempt.Status = models.StatusFailed
	attempt.Kind = kind
	attempt.ErrorMessage = message
	attempt.Err = err
	return attempt
}

func (c *Controller) succeed(attempt models.FetchAttempt, imageURL string) models.FetchAttempt {
	c.surfaceMu.Lock()
	c.display.SetImageSource(imageURL)
	c.display.SetImageAlt(AltLoaded)
	c.surfaceMu.Unlock()

	c.metrics.IncRequest("success")
	c.logger.Info("cat image fetched", slog.String("url", imageURL))

	attempt.Status = models.StatusSucceeded
	attempt.ImageURL = imageURL
	return attempt
}

// hold keeps the loading state up for the minimum loading duration.
func (c *Controller) hold(ctx context.Context) {
	if c.minLoading <= 0 {
		return
	}
	timer := time.NewTimer(c.minLoading)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (c *Controller) enterLoading() {
	c.surfaceMu.Lock()
	defer c.surfaceMu.Unlock()

	c.hideError()
	c.trigger.SetEnabled(false)
	c.trigger.SetLabel(LabelLoading)
}

// exitLoading clears the loading flag before re-enabling the trigger, so an
// activation observed on the enabled trigger is never refused.
func (c *Controller) exitLoading() {
	c.surfaceMu.Lock()
	defer c.surfaceMu.Unlock()

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	c.trigger.SetEnabled(true)
	c.trigger.SetLabel(LabelReady)
}

func (c *Controller) hideError() {
	c.display.SetErrorVisible(false)
	c.display.SetErrorText("")
}

func (c *Controller) showError(message string) {
	c.display.SetErrorText(message)
	c.display.SetErrorVisible(true)
}

func (c *Controller) resetImage() {
	c.display.SetImageSource("")
	c.display.SetImageAlt(AltPlaceholder)
}
