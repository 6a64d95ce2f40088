package playback

// Engine is the minimal media engine surface.
type Engine interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
}

// AudioControl is implemented by engines that can mute and adjust volume.
type AudioControl interface {
	SetMuted(muted bool) error
	SetVolume(volume float64) error
}

// Fullscreener is implemented by engines that can enter fullscreen.
type Fullscreener interface {
	RequestFullscreen() error
}

// EventSink receives engine reports. Controller implements it.
type EventSink interface {
	OnEngineProgress(fraction float64)
	OnEngineDuration(seconds float64)
	OnEnginePlaying(playing bool)
	OnEngineError(err error)
	OnEngineReady()
}
