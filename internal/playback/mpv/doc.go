// Package mpv drives an mpv process through its JSON IPC socket and reports
// playback events to a playback.EventSink.
package mpv
