// Package main hosts the sportanalyzer CLI entrypoint and command graph.
//
// The Cobra command tree submits videos to the analysis service, renders saved
// analysis reports, plays videos through mpv with the matching frame feedback,
// and scaffolds configuration. Configuration resolution and logger setup live
// in commandContext so subcommands only deal with their own flags.
//
// Keep this package thin: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
