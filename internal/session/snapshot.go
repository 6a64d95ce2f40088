package session

import (
	"time"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/media"
	"sportanalyzer/internal/upload"
)

// Parameters are the user-editable analysis options.
type Parameters struct {
	// Prompt may be blank; it resolves to the configured default on submit.
	Prompt   string
	FPS      float64
	TestMode bool
}

// Result is populated when an attempt completes.
type Result struct {
	ProcessedVideo string
	View           feedback.View
	Response       upload.Response
}

// Snapshot is a read-only copy of the controller's state.
type Snapshot struct {
	ID              string
	Stage           Stage
	Source          media.File
	PreviewRef      string
	Parameters      Parameters
	SubmittedPrompt string
	UploadPercent   int
	Result          *Result
	ErrorReason     string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// HasFile reports whether a source file is selected.
func (s Snapshot) HasFile() bool {
	return !s.Source.IsZero()
}

// Elapsed returns the duration of the current or last attempt.
func (s Snapshot) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
