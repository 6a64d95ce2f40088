// Package feedback normalizes the analysis service's feedback payload into a
// read-only View: aggregate shot statistics plus the ordered frame-by-frame
// entries.
//
// BuildView is a pure transformation. Frames keep the order they arrived in;
// nothing is sorted or filtered. A payload without a feedback object yields
// ErrNoAnalysis so callers skip frame-level rendering.
package feedback
