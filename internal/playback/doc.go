// Package playback reconciles a media engine's continuous position with a
// draggable seek position.
//
// A Controller wraps one Engine. While the user drags the seek bar, engine
// progress reports are dropped so the displayed position follows the drag;
// CommitSeek issues exactly one engine seek and resumes tracking. Optional
// engine capabilities (audio control, fullscreen) are discovered with type
// assertions and silently skipped when absent.
package playback
