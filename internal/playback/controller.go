package playback

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/services"
)

// ErrNoEngine is returned by commands on a controller without an engine.
var ErrNoEngine = errors.New("no media engine bound")

// Option configures a Controller.
type Option func(*Controller)

// WithVolume sets the initial volume, clamped to [0,1].
func WithVolume(volume float64) Option {
	return func(c *Controller) {
		c.state.Volume = clampFraction(volume)
	}
}

// WithLogger sets the logger used for engine failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller tracks playback for one displayed video.
type Controller struct {
	logger *slog.Logger

	mu     sync.Mutex
	engine Engine
	state  State
}

// New constructs a controller bound to engine, which may be nil until Bind.
func New(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		logger: logging.NewNop(),
		state:  State{Volume: DefaultVolume},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "playback")
	return c
}

// Bind replaces the engine and resets engine-derived state.
func (c *Controller) Bind(engine Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine = engine
	c.state = State{Muted: c.state.Muted, Volume: c.state.Volume}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TogglePlay pauses a playing engine and plays a paused one.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	engine := c.engine
	target := !c.state.Playing
	c.mu.Unlock()
	if engine == nil {
		return services.Wrap(services.ErrPlayback, "playback", "toggle play", "", ErrNoEngine)
	}

	var err error
	if target {
		err = engine.Play()
	} else {
		err = engine.Pause()
	}
	if err != nil {
		return services.Wrap(services.ErrPlayback, "playback", "toggle play", "", err)
	}

	c.mu.Lock()
	c.state.Playing = target
	c.mu.Unlock()
	return nil
}

// SetMuted records the mute flag and forwards it when the engine supports
// audio control.
func (c *Controller) SetMuted(muted bool) error {
	c.mu.Lock()
	engine := c.engine
	c.state.Muted = muted
	c.mu.Unlock()
	if audio, ok := engine.(AudioControl); ok {
		if err := audio.SetMuted(muted); err != nil {
			return services.Wrap(services.ErrPlayback, "playback", "set muted", "", err)
		}
	}
	return nil
}

// SetVolume records volume clamped to [0,1] and forwards it when supported.
func (c *Controller) SetVolume(volume float64) error {
	volume = clampFraction(volume)
	c.mu.Lock()
	engine := c.engine
	c.state.Volume = volume
	c.mu.Unlock()
	if audio, ok := engine.(AudioControl); ok {
		if err := audio.SetVolume(volume); err != nil {
			return services.Wrap(services.ErrPlayback, "playback", "set volume", "", err)
		}
	}
	return nil
}

// BeginSeek starts a drag. Engine progress is ignored until CommitSeek.
func (c *Controller) BeginSeek() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Seeking = true
}

// UpdateSeekPreview moves the displayed position without touching the engine.
func (c *Controller) UpdateSeekPreview(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Played = clampFraction(fraction)
}

// CommitSeek seeks the engine once to fraction of the duration and resumes
// tracking engine progress.
func (c *Controller) CommitSeek(fraction float64) error {
	fraction = clampFraction(fraction)
	c.mu.Lock()
	engine := c.engine
	c.state.Seeking = true
	c.state.Played = fraction
	target := fraction * c.state.Duration
	c.mu.Unlock()

	var err error
	if engine == nil {
		err = ErrNoEngine
	} else {
		err = engine.Seek(target)
	}

	c.mu.Lock()
	c.state.Seeking = false
	c.mu.Unlock()
	if err != nil {
		return services.Wrap(services.ErrPlayback, "playback", "seek", "", err)
	}
	return nil
}

// SeekBy commits a seek relative to the current position.
func (c *Controller) SeekBy(seconds float64) error {
	c.mu.Lock()
	duration := c.state.Duration
	position := c.state.Position()
	c.mu.Unlock()
	if duration <= 0 {
		return nil
	}
	return c.CommitSeek((position + seconds) / duration)
}

// RequestFullscreen asks the engine to go fullscreen. Engines without the
// capability are ignored.
func (c *Controller) RequestFullscreen() error {
	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()
	fs, ok := engine.(Fullscreener)
	if !ok {
		return nil
	}
	if err := fs.RequestFullscreen(); err != nil {
		return services.Wrap(services.ErrPlayback, "playback", "fullscreen", "", err)
	}
	return nil
}

// OnEngineProgress records the engine's played fraction unless a drag is in
// progress.
func (c *Controller) OnEngineProgress(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Seeking {
		return
	}
	c.state.Played = clampFraction(fraction)
}

// OnEngineDuration records the media duration in seconds.
func (c *Controller) OnEngineDuration(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Duration = validDuration(seconds)
}

// OnEnginePlaying records a play/pause change made outside the controller,
// for example from the engine's own window.
func (c *Controller) OnEnginePlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Playing = playing
}

// OnEngineError stores err as reported.
func (c *Controller) OnEngineError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.state.LastError = err
	c.mu.Unlock()
	logging.WarnWithContext(c.logger, "media engine reported error", "engine_error",
		logging.Error(err),
		logging.String(logging.FieldImpact, "playback unavailable for this video"),
	)
}

// OnEngineReady marks the media as loaded and clears any earlier error.
func (c *Controller) OnEngineReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Ready = true
	c.state.LastError = nil
}

// VolumeStep returns volume moved by delta, rounded to two decimals.
func VolumeStep(volume, delta float64) float64 {
	return clampFraction(math.Round((volume+delta)*100) / 100)
}
