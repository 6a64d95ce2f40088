package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/media"
	"sportanalyzer/internal/preview"
	"sportanalyzer/internal/services"
	"sportanalyzer/internal/upload"
)

var (
	// ErrBusy is returned while a request is in flight.
	ErrBusy = services.ErrBusy
	// ErrNoFile is returned by Submit when no file is selected.
	ErrNoFile = fmt.Errorf("%w: no file selected", services.ErrValidation)
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for stage transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier registers a hook invoked when an attempt finishes.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithPreviews shares a preview registry between controllers.
func WithPreviews(r *preview.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.previews = r
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Controller drives one analysis session.
type Controller struct {
	settings Settings
	tracker  Tracker
	previews *preview.Registry
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	sampler  *logging.ProgressSampler

	mu        sync.Mutex
	state     Snapshot
	handle    preview.Handle
	transfer  Transfer
	attempt   string
	observers []observer
	nextID    int
	pending   []Snapshot
	flushing  bool
	closed    bool
}

// New constructs a controller in the Idle stage.
func New(settings Settings, tracker Tracker, opts ...Option) *Controller {
	settings = settings.withDefaults()
	c := &Controller{
		settings: settings,
		tracker:  tracker,
		previews: preview.NewRegistry(),
		logger:   logging.NewNop(),
		now:      time.Now,
		sampler:  logging.NewProgressSampler(25),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "session")
	c.state = Snapshot{Stage: Idle, Parameters: settings.initialParameters()}
	return c
}

// Settings returns the bounds the controller validates against.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Previews returns the registry holding the controller's preview handle.
func (c *Controller) Previews() *preview.Registry {
	return c.previews
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyStateLocked()
}

// Subscribe registers fn for every subsequent transition. The returned function
// removes the registration.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// SelectFile makes file the session's source and starts a fresh attempt.
func (c *Controller) SelectFile(file media.File) error {
	if file.IsZero() {
		return services.Wrap(services.ErrValidation, "session", "select file", "no file given", nil)
	}
	if !file.Accepted(c.settings.AcceptedExtensions) {
		return services.Wrap(services.ErrValidation, "session", "select file",
			fmt.Sprintf("unsupported video format %q (accepted: %s)", file.Ext(), strings.Join(c.settings.AcceptedExtensions, ", ")), nil)
	}

	c.mu.Lock()
	if err := c.checkIdleLocked("select file"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.handle.Valid() {
		c.previews.Release(c.handle)
	}
	c.handle = c.previews.Acquire(file)
	c.attempt = uuid.NewString()
	c.state = Snapshot{
		ID:         c.attempt,
		Stage:      FileSelected,
		Source:     file,
		PreviewRef: c.handle.Ref,
		Parameters: c.state.Parameters,
	}
	c.transitionLocked()
	c.mu.Unlock()

	c.flush()
	return nil
}

// SetPrompt sets the prompt submitted with the next attempt. Blank prompts
// resolve to the configured default on Submit.
func (c *Controller) SetPrompt(prompt string) error {
	return c.updateParameters("set prompt", func(p *Parameters) error {
		p.Prompt = prompt
		return nil
	})
}

// SetFPS sets the sampling rate, which must lie within the configured range.
func (c *Controller) SetFPS(fps float64) error {
	return c.updateParameters("set fps", func(p *Parameters) error {
		if math.IsNaN(fps) || math.IsInf(fps, 0) || fps < c.settings.MinFPS || fps > c.settings.MaxFPS {
			return services.Wrap(services.ErrValidation, "session", "set fps",
				fmt.Sprintf("fps must be between %g and %g, got %g", c.settings.MinFPS, c.settings.MaxFPS, fps), nil)
		}
		p.FPS = fps
		return nil
	})
}

// SetTestMode toggles pass-through processing on the service.
func (c *Controller) SetTestMode(enabled bool) error {
	return c.updateParameters("set test mode", func(p *Parameters) error {
		p.TestMode = enabled
		return nil
	})
}

func (c *Controller) updateParameters(operation string, apply func(*Parameters) error) error {
	c.mu.Lock()
	if err := c.checkIdleLocked(operation); err != nil {
		c.mu.Unlock()
		return err
	}
	params := c.state.Parameters
	if err := apply(&params); err != nil {
		c.mu.Unlock()
		return err
	}
	if params == c.state.Parameters {
		c.mu.Unlock()
		return nil
	}
	c.state.Parameters = params
	c.pending = append(c.pending, c.copyStateLocked())
	c.mu.Unlock()

	c.flush()
	return nil
}

// Submit starts an attempt for the selected file. It returns once the request
// is started; transfer events drive the remaining transitions.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkIdleLocked("submit"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.Source.IsZero() {
		c.mu.Unlock()
		return ErrNoFile
	}
	if c.tracker == nil {
		c.mu.Unlock()
		return services.Wrap(services.ErrConfiguration, "session", "submit", "no tracker configured", nil)
	}

	attempt := uuid.NewString()
	prompt := strings.TrimSpace(c.state.Parameters.Prompt)
	if prompt == "" {
		prompt = c.settings.DefaultPrompt
	}
	c.attempt = attempt
	c.state.ID = attempt
	c.state.Stage = Uploading
	c.state.SubmittedPrompt = prompt
	c.state.UploadPercent = 0
	c.state.Result = nil
	c.state.ErrorReason = ""
	c.state.StartedAt = c.now()
	c.state.FinishedAt = time.Time{}
	file := c.state.Source
	params := upload.Parameters{
		Prompt:    prompt,
		FPS:       c.state.Parameters.FPS,
		TestMode:  c.state.Parameters.TestMode,
		RequestID: attempt,
	}
	c.transitionLocked()
	c.mu.Unlock()
	c.flush()

	ctx = services.WithSessionID(ctx, attempt)
	ctx = services.WithStage(ctx, Uploading.String())
	transfer := c.tracker.Track(ctx, file, params, c.callbacks(ctx, attempt))

	c.mu.Lock()
	if c.attempt == attempt && c.state.Stage.InFlight() {
		c.transfer = transfer
		transfer = nil
	}
	c.mu.Unlock()
	if transfer != nil && c.isClosed() {
		transfer.Cancel()
	}
	return nil
}

func (c *Controller) callbacks(ctx context.Context, attempt string) upload.Callbacks {
	return upload.Callbacks{
		OnProgress: func(pct int) { c.onProgress(attempt, pct) },
		OnTransferred: func() {
			c.onTransferred(attempt)
		},
		OnComplete: func(resp upload.Response) {
			c.onComplete(ctx, attempt, resp)
		},
		OnError: func(reason string) {
			c.onError(ctx, attempt, reason)
		},
	}
}

func (c *Controller) onProgress(attempt string, pct int) {
	c.mu.Lock()
	if attempt != c.attempt || c.state.Stage != Uploading {
		c.mu.Unlock()
		return
	}
	pct = min(max(pct, 0), 100)
	if pct <= c.state.UploadPercent {
		c.mu.Unlock()
		return
	}
	c.state.UploadPercent = pct
	if c.sampler.ShouldLog(pct, c.attempt) {
		c.logger.Debug("upload progress",
			logging.String(logging.FieldSessionID, c.attempt),
			logging.Int("percent", pct),
		)
	}
	c.pending = append(c.pending, c.copyStateLocked())
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) onTransferred(attempt string) {
	c.mu.Lock()
	if attempt != c.attempt || c.state.Stage != Uploading {
		c.mu.Unlock()
		return
	}
	c.state.Stage = Processing
	c.transitionLocked()
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) onComplete(ctx context.Context, attempt string, resp upload.Response) {
	result, err := buildResult(resp)

	c.mu.Lock()
	if attempt != c.attempt || !c.state.Stage.InFlight() {
		c.mu.Unlock()
		return
	}
	if err != nil {
		logging.WarnWithContext(c.logger, "analysis payload rejected", "analysis_invalid",
			logging.String(logging.FieldSessionID, attempt),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session marked failed"),
		)
		c.finishLocked(nil, upload.FallbackReason)
	} else {
		c.finishLocked(&result, "")
	}
	snap := c.copyStateLocked()
	c.mu.Unlock()

	c.flush()
	c.notify(ctx, snap)
}

func (c *Controller) onError(ctx context.Context, attempt, reason string) {
	c.mu.Lock()
	if attempt != c.attempt || !c.state.Stage.InFlight() {
		c.mu.Unlock()
		return
	}
	if strings.TrimSpace(reason) == "" {
		reason = upload.FallbackReason
	}
	c.finishLocked(nil, reason)
	snap := c.copyStateLocked()
	c.mu.Unlock()

	c.flush()
	c.notify(ctx, snap)
}

func (c *Controller) finishLocked(result *Result, reason string) {
	c.transfer = nil
	c.state.FinishedAt = c.now()
	if result != nil {
		c.state.Stage = Complete
		c.state.UploadPercent = 100
		c.state.Result = result
		c.state.ErrorReason = ""
	} else {
		c.state.Stage = Error
		c.state.Result = nil
		c.state.ErrorReason = reason
	}
	c.transitionLocked()
}

func buildResult(resp upload.Response) (Result, error) {
	result := Result{ProcessedVideo: resp.ProcessedVideo, Response: resp}
	if len(resp.Analysis) == 0 || string(resp.Analysis) == "null" {
		result.View, _ = feedback.BuildView(feedback.Payload{})
		return result, nil
	}
	view, err := feedback.Parse(resp.Analysis)
	if err != nil && !errors.Is(err, feedback.ErrNoAnalysis) {
		return Result{}, err
	}
	result.View = view
	return result, nil
}

func (c *Controller) notify(ctx context.Context, snap Snapshot) {
	if c.notifier == nil {
		return
	}
	c.notifier.SessionFinished(context.WithoutCancel(ctx), snap)
}

// Close cancels any in-flight request and releases the preview handle. The
// controller rejects further operations. Close does not wait for the transfer
// goroutine; use the Transfer's Done channel for that.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.attempt = ""
	transfer := c.transfer
	c.transfer = nil
	if c.handle.Valid() {
		c.previews.Release(c.handle)
		c.handle = preview.Handle{}
	}
	c.mu.Unlock()

	if transfer != nil {
		transfer.Cancel()
	}
	return nil
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) checkIdleLocked(operation string) error {
	if c.closed {
		return ErrClosed
	}
	if c.state.Stage.InFlight() {
		return services.Wrap(ErrBusy, "session", operation, "analysis in progress", nil)
	}
	return nil
}

// transitionLocked logs the current stage and queues a snapshot.
func (c *Controller) transitionLocked() {
	attrs := []logging.Attr{
		logging.String(logging.FieldSessionID, c.state.ID),
		logging.String(logging.FieldStage, c.state.Stage.String()),
	}
	switch c.state.Stage {
	case FileSelected:
		attrs = append(attrs, logging.String("file", c.state.Source.Name), logging.Int64("size_bytes", c.state.Source.Size))
	case Complete:
		attrs = append(attrs,
			logging.Int("frames", c.state.Result.View.Len()),
			logging.Bool("has_analysis", c.state.Result.View.HasAnalysis()),
			logging.Duration("elapsed", c.state.Elapsed()),
		)
	case Error:
		attrs = append(attrs, logging.String("reason", c.state.ErrorReason), logging.Duration("elapsed", c.state.Elapsed()))
	}
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, "session stage changed", attrs...)
	c.pending = append(c.pending, c.copyStateLocked())
}

func (c *Controller) copyStateLocked() Snapshot {
	snap := c.state
	if c.state.Result != nil {
		result := *c.state.Result
		snap.Result = &result
	}
	return snap
}

// flush delivers queued snapshots outside the lock. A nested call made from an
// observer returns immediately and the outer loop delivers its snapshot.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true
	for len(c.pending) > 0 {
		snap := c.pending[0]
		c.pending = c.pending[1:]
		observers := append([]observer(nil), c.observers...)
		c.mu.Unlock()
		for _, o := range observers {
			o.fn(snap)
		}
		c.mu.Lock()
	}
	c.pending = nil
	c.flushing = false
	c.mu.Unlock()
}
