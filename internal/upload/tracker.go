package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/media"
	"sportanalyzer/internal/services"
)

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 64 << 20

// Response is the service's success payload.
type Response struct {
	ProcessedVideo string          `json:"processedVideo"`
	Analysis       json.RawMessage `json:"analysis"`
	// Body holds the raw response bytes.
	Body []byte `json:"-"`
}

// Handle controls one tracked transfer.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel aborts the transfer. The terminal OnError still fires unless the
// transfer already finished.
func (h *Handle) Cancel() {
	if h != nil && h.cancel != nil {
		h.cancel()
	}
}

// Done is closed after the terminal callback returns.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Track starts submitting file with params and returns immediately. Events are
// delivered through cb from the transfer goroutine.
func (c *Client) Track(ctx context.Context, file media.File, params Parameters, cb Callbacks) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	em := newEmitter(cb)

	go func() {
		defer close(h.done)
		defer cancel()
		c.run(ctx, file, params, em)
	}()
	return h
}

func (c *Client) run(ctx context.Context, file media.File, params Parameters, em *emitter) {
	ctx = services.WithRequestID(ctx, params.RequestID)
	logger := logging.WithContext(ctx, c.logger)
	start := time.Now()

	resp, err := c.send(ctx, file, params, em, logger)
	if err != nil {
		reason := NormalizeReason(serverMessage(err), err)
		if em.fail(reason) {
			logging.WarnWithContext(logger, "analysis request failed", "upload_failed",
				logging.String("reason", reason),
				logging.String("error_kind", services.Kind(err)),
				logging.Duration("elapsed", time.Since(start)),
				logging.String(logging.FieldErrorHint, "check that the analysis service is reachable"),
				logging.String(logging.FieldImpact, "no analysis produced"),
			)
		}
		return
	}
	if em.complete(resp) {
		logger.Info("analysis request complete",
			logging.String("processed_video", resp.ProcessedVideo),
			logging.Int("response_bytes", len(resp.Body)),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}

func (c *Client) send(ctx context.Context, file media.File, params Parameters, em *emitter, logger *slog.Logger) (Response, error) {
	env, err := buildEnvelope(file, params)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransfer, "upload", "build body", "", err)
	}
	content, err := file.Open()
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransfer, "upload", "open video", file.Path, err)
	}
	defer content.Close()

	total := env.length(file.Size)
	sampler := logging.NewProgressSampler(25)
	body := &countingReader{
		r: env.body(content),
		onRead: func(sent int64) {
			em.progress(sent, total)
			if pct, ok := Percent(sent, total); ok && sampler.ShouldLog(pct, "uploading") {
				logger.Debug("upload progress", logging.Int("percent", pct), logging.Int64("sent_bytes", sent))
			}
			if sent >= total {
				em.markTransferred()
			}
		},
		onEOF: em.markTransferred,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransfer, "upload", "new request", "", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", env.contentType)
	req.Header.Set("Accept", "application/json")
	if params.RequestID != "" {
		req.Header.Set("X-Request-ID", params.RequestID)
	}

	logger.Info("analysis request started",
		logging.String("file", file.Name),
		logging.Int64("size_bytes", file.Size),
		logging.Float64("fps", params.FPS),
		logging.Bool("test_mode", params.TestMode),
		logging.String("endpoint", c.endpoint),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransfer, "upload", "send", "", err)
	}
	defer resp.Body.Close()
	em.markTransferred()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransfer, "upload", "read response", "", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Response{}, &StatusError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(data)}
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Response{}, services.Wrap(services.ErrRemote, "upload", "decode response", "", err)
	}
	decoded.ProcessedVideo = c.ResolveReference(decoded.ProcessedVideo)
	decoded.Body = data
	return decoded, nil
}

// StatusError reports a non-2xx response from the analysis service.
type StatusError struct {
	StatusCode int
	// Message is the server-supplied "error" field, when present.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return services.ErrRemote
}

func decodeErrorMessage(data []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload.Error, &text); err == nil {
		return strings.TrimSpace(text)
	}
	// Some servers send {"error": {"message": "..."}}.
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func serverMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}
