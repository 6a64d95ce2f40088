package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sportanalyzer/internal/config"
	"sportanalyzer/internal/feedback"
)

const userAgent = "sportanalyzer/0.1.0"

// Service defines the notification surface exposed to the session layer.
type Service interface {
	NotifyAnalysisComplete(ctx context.Context, fileName string, fb feedback.Feedback, elapsed time.Duration) error
	NotifyAnalysisFailed(ctx context.Context, fileName, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		complete: cfg.Notifications.Complete,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	complete bool
	errors   bool
}

func (n *ntfyService) NotifyAnalysisComplete(ctx context.Context, fileName string, fb feedback.Feedback, elapsed time.Duration) error {
	if !n.complete {
		return nil
	}
	fileName = strings.TrimSpace(fileName)
	message := fmt.Sprintf("🏀 Analysis ready: %s\n%d frames, %d/%d shots made (%s)",
		fileName, fb.TotalFrames, fb.MadeCount, fb.ShotCount, fb.Accuracy.String())
	if elapsed = elapsed.Round(time.Second); elapsed > 0 {
		message = fmt.Sprintf("%s in %s", message, elapsed)
	}
	data := payload{
		title:   "Sport Analyzer - Analysis Complete",
		message: message,
		tags:    []string{"sportanalyzer", "analysis", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnalysisFailed(ctx context.Context, fileName, reason string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Analysis failed")
	if fileName = strings.TrimSpace(fileName); fileName != "" {
		builder.WriteString(" for ")
		builder.WriteString(fileName)
	}
	builder.WriteString(": ")
	if reason = strings.TrimSpace(reason); reason != "" {
		builder.WriteString(reason)
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Sport Analyzer - Error",
		message:  builder.String(),
		tags:     []string{"sportanalyzer", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Sport Analyzer - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"sportanalyzer", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAnalysisComplete(context.Context, string, feedback.Feedback, time.Duration) error {
	return nil
}
func (noopService) NotifyAnalysisFailed(context.Context, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
