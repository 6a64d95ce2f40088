// Package logs reads the JSON log file written by the CLI.
//
// Tail returns the last lines of the file and, in follow mode, keeps
// emitting new records until the context ends. Entry decodes one JSON record
// so callers can filter by session and render a compact line.
package logs
