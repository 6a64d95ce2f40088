package playback

import (
	"fmt"
	"math"
)

// DefaultVolume is applied when no volume option is given.
const DefaultVolume = 0.8

// State is a copy of the controller's playback state.
type State struct {
	Playing   bool
	Muted     bool
	Volume    float64
	Duration  float64
	Played    float64
	Seeking   bool
	LastError error
	Ready     bool
}

// Position returns the elapsed seconds implied by Played.
func (s State) Position() float64 {
	return s.Played * s.Duration
}

// FormatTime renders seconds as m:ss. Invalid or negative input renders 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// TimeLabel renders "elapsed / total" for s.
func TimeLabel(s State) string {
	return FormatTime(s.Position()) + " / " + FormatTime(s.Duration)
}

// clampFraction bounds f to [0,1]; NaN becomes 0.
func clampFraction(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Min(math.Max(f, 0), 1)
}

func validDuration(seconds float64) float64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return seconds
}
