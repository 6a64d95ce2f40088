// Package services defines shared utilities consumed by the session, upload,
// and playback layers.
//
// Key responsibilities:
//   - Context helpers that stamp session attempt IDs, stage names, and request
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that separate local
//     rejections (validation, busy) from transfer and remote failures that end
//     a session in the error stage.
//
// Use these helpers when wiring new components so error classification and
// log fields stay uniform across the CLI.
package services
