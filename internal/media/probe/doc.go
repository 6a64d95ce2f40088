// Package probe wraps ffprobe to read container metadata for a local video
// before it is submitted: duration, dimensions, codec, and frame rate.
//
// Probing is optional. Callers treat a missing binary or a failed probe as
// "unknown" and continue without the estimate.
package probe
