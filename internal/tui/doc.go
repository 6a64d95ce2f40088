// Package tui is the terminal player screen: playback controls, a seek bar,
// and the analysis entry for the current position.
//
// Engine reports arrive as tea messages and are applied to the playback
// controller in Update, so the Bubble Tea loop is the only writer of what the
// screen shows.
package tui
