package session

import (
	"context"

	"sportanalyzer/internal/media"
	"sportanalyzer/internal/upload"
)

// Transfer is an in-flight request started by a Tracker.
type Transfer interface {
	Cancel()
	Done() <-chan struct{}
}

// Tracker submits a file and reports progress through callbacks.
type Tracker interface {
	Track(ctx context.Context, file media.File, params upload.Parameters, cb upload.Callbacks) Transfer
}

// Notifier is told about every attempt that reached Complete or Error.
type Notifier interface {
	SessionFinished(ctx context.Context, snap Snapshot)
}

type uploadTracker struct {
	client *upload.Client
}

// UploadTracker adapts an upload client to the Tracker interface.
func UploadTracker(client *upload.Client) Tracker {
	return uploadTracker{client: client}
}

func (t uploadTracker) Track(ctx context.Context, file media.File, params upload.Parameters, cb upload.Callbacks) Transfer {
	return t.client.Track(ctx, file, params, cb)
}
