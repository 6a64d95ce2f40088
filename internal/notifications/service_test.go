package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sportanalyzer/internal/config"
	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/media"
	"sportanalyzer/internal/notifications"
	"sportanalyzer/internal/session"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	agent    string
	body     string
}

func newTopic(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []capturedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			agent:    r.Header.Get("User-Agent"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), requests...)
	}
}

func configFor(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Complete = true
	cfg.Notifications.Errors = true
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configFor(""))
	if err := svc.NotifyAnalysisFailed(context.Background(), "clip.mp4", "boom"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	server, requests := newTopic(t, http.StatusOK)
	svc := notifications.NewService(configFor(server.URL))
	ctx := context.Background()

	fb := feedback.Feedback{TotalFrames: 12, ShotCount: 3, MadeCount: 2, Accuracy: feedback.AccuracyFromString("67%")}
	if err := svc.NotifyAnalysisComplete(ctx, " clip.mp4 ", fb, 42*time.Second); err != nil {
		t.Fatalf("NotifyAnalysisComplete: %v", err)
	}
	if err := svc.NotifyAnalysisFailed(ctx, "clip.mp4", "Request timed out"); err != nil {
		t.Fatalf("NotifyAnalysisFailed: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}

	got := requests()
	if len(got) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(got))
	}
	tests := []struct {
		title    string
		message  string
		tags     string
		priority string
	}{
		{
			title:   "Sport Analyzer - Analysis Complete",
			message: "🏀 Analysis ready: clip.mp4\n12 frames, 2/3 shots made (67%) in 42s",
			tags:    "sportanalyzer,analysis,completed",
		},
		{
			title:    "Sport Analyzer - Error",
			message:  "❌ Analysis failed for clip.mp4: Request timed out",
			tags:     "sportanalyzer,error,alert",
			priority: "high",
		},
		{
			title:    "Sport Analyzer - Test",
			message:  "🧪 Notification system test",
			tags:     "sportanalyzer,test",
			priority: "low",
		},
	}
	for i, want := range tests {
		req := got[i]
		if req.title != want.title {
			t.Errorf("request %d title: got %q want %q", i, req.title, want.title)
		}
		if req.body != want.message {
			t.Errorf("request %d message: got %q want %q", i, req.body, want.message)
		}
		if req.tags != want.tags {
			t.Errorf("request %d tags: got %q want %q", i, req.tags, want.tags)
		}
		if req.priority != want.priority {
			t.Errorf("request %d priority: got %q want %q", i, req.priority, want.priority)
		}
		if !strings.HasPrefix(req.agent, "sportanalyzer/") {
			t.Errorf("request %d user agent: got %q", i, req.agent)
		}
	}
}

func TestNtfyServiceHonoursEventToggles(t *testing.T) {
	server, requests := newTopic(t, http.StatusOK)
	cfg := configFor(server.URL)
	cfg.Notifications.Complete = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyAnalysisComplete(context.Background(), "clip.mp4", feedback.Feedback{}, 0); err != nil {
		t.Fatalf("NotifyAnalysisComplete: %v", err)
	}
	if err := svc.NotifyAnalysisFailed(context.Background(), "clip.mp4", "boom"); err != nil {
		t.Fatalf("NotifyAnalysisFailed: %v", err)
	}
	if n := len(requests()); n != 0 {
		t.Fatalf("expected disabled events to be skipped, got %d requests", n)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server, _ := newTopic(t, http.StatusForbidden)
	svc := notifications.NewService(configFor(server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestForSessionDispatchesTerminalStages(t *testing.T) {
	server, requests := newTopic(t, http.StatusOK)
	notifier := notifications.ForSession(notifications.NewService(configFor(server.URL)), nil)
	ctx := context.Background()

	view, err := feedback.BuildView(feedback.Payload{Feedback: &feedback.Feedback{TotalFrames: 1}})
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	source := media.File{Path: "/videos/clip.mp4", Name: "clip.mp4"}
	notifier.SessionFinished(ctx, session.Snapshot{Stage: session.Complete, Source: source, Result: &session.Result{View: view}})
	notifier.SessionFinished(ctx, session.Snapshot{Stage: session.Error, Source: source, ErrorReason: "Failed to process video"})
	notifier.SessionFinished(ctx, session.Snapshot{Stage: session.Uploading, Source: source})

	got := requests()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].title != "Sport Analyzer - Analysis Complete" || got[1].title != "Sport Analyzer - Error" {
		t.Fatalf("unexpected titles: %q, %q", got[0].title, got[1].title)
	}
	if !strings.Contains(got[1].body, "Failed to process video") {
		t.Fatalf("expected failure reason in body, got %q", got[1].body)
	}
}
