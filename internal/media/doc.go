// Package media describes the local video a user selects for analysis.
//
// A File is a stat-backed reference: it records name, size, and container
// extension at selection time and reopens the path when the upload streams
// it. Accepted reports whether the extension is in the configured container
// allowlist; matching is case-insensitive.
package media
