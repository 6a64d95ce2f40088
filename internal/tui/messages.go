package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sportanalyzer/internal/playback"
)

// ProgressMsg carries the engine's played fraction.
type ProgressMsg struct{ Fraction float64 }

// DurationMsg carries the media duration in seconds.
type DurationMsg struct{ Seconds float64 }

// PlayingMsg reports a play/pause change made by the engine.
type PlayingMsg struct{ Playing bool }

// ReadyMsg reports that the media loaded.
type ReadyMsg struct{}

// EngineErrorMsg carries an engine playback error.
type EngineErrorMsg struct{ Err error }

// EngineClosedMsg is sent when the engine's event stream ends.
type EngineClosedMsg struct{ Err error }

type tickMsg time.Time

const tickInterval = 200 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Sink converts engine events into program messages.
type Sink struct {
	send func(tea.Msg)
}

var _ playback.EventSink = Sink{}

// NewSink returns a sink that delivers to send, usually (*tea.Program).Send.
func NewSink(send func(tea.Msg)) Sink {
	return Sink{send: send}
}

func (s Sink) OnEngineProgress(fraction float64) { s.send(ProgressMsg{Fraction: fraction}) }
func (s Sink) OnEngineDuration(seconds float64)  { s.send(DurationMsg{Seconds: seconds}) }
func (s Sink) OnEnginePlaying(playing bool)      { s.send(PlayingMsg{Playing: playing}) }
func (s Sink) OnEngineError(err error)           { s.send(EngineErrorMsg{Err: err}) }
func (s Sink) OnEngineReady()                    { s.send(ReadyMsg{}) }
