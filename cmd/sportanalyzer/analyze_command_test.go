package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sportanalyzer/internal/services"
	"sportanalyzer/internal/session"
)

const analysisResponse = `{
  "processedVideo": "/processed/clip.mp4",
  "analysis": {
    "feedback": {"totalFrames": 2, "shotCount": 3, "madeCount": 2, "accuracy": "66.7%"},
    "analysis": [
      {"frame": 0, "timestamp": 0, "analysis": "Set feet before the jumper"},
      {"frame": 30, "timestamp": 1, "analysis": "Follow through held"}
    ]
  }
}`

type analysisServer struct {
	*httptest.Server

	mu     sync.Mutex
	fields map[string]string
}

func newAnalysisServer(t *testing.T, status int, body string) *analysisServer {
	t.Helper()
	s := &analysisServer{fields: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze-video" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		for _, key := range []string{"prompt", "fps", "testMode"} {
			s.fields[key] = r.FormValue(key)
		}
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *analysisServer) field(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields[key]
}

func TestAnalyzeRendersReportAndSavesResponse(t *testing.T) {
	srv := newAnalysisServer(t, http.StatusOK, analysisResponse)
	env := setupCLITestEnv(t, srv.URL)
	video := writeVideo(t, env.baseDir, "clip.mp4")
	saved := filepath.Join(env.baseDir, "out", "response.json")

	out, _, err := runCLI(t, []string{"analyze", video, "--quiet", "--fps", "2", "--prompt", "Count my layups", "--out", saved}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Analysis Results")
	requireContains(t, out, "Processed video: "+srv.URL+"/processed/clip.mp4")
	requireContains(t, out, "Frame Analysis (2)")
	requireContains(t, out, "Set feet before the jumper")

	if got := srv.field("prompt"); got != "Count my layups" {
		t.Fatalf("unexpected prompt %q", got)
	}
	if got := srv.field("fps"); got != "2" {
		t.Fatalf("unexpected fps %q", got)
	}
	if got := srv.field("testMode"); got != "false" {
		t.Fatalf("unexpected testMode %q", got)
	}

	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved response: %v", err)
	}
	if string(data) != analysisResponse {
		t.Fatalf("saved response differs: %s", data)
	}
}

func TestAnalyzeShowsProgressOnStderr(t *testing.T) {
	srv := newAnalysisServer(t, http.StatusOK, analysisResponse)
	env := setupCLITestEnv(t, srv.URL)
	video := writeVideo(t, env.baseDir, "clip.mov")

	_, stderr, err := runCLI(t, []string{"analyze", video}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, stderr, "Analyzing clip.mov")
	requireContains(t, stderr, "Processing video...")
	requireContains(t, stderr, "Complete in")
}

func TestAnalyzeJSONOutput(t *testing.T) {
	srv := newAnalysisServer(t, http.StatusOK, analysisResponse)
	env := setupCLITestEnv(t, srv.URL)
	video := writeVideo(t, env.baseDir, "clip.mp4")

	out, _, err := runCLI(t, []string{"analyze", video, "--quiet", "--json", "--test-mode"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var decoded struct {
		SessionID      string  `json:"sessionId"`
		Prompt         string  `json:"prompt"`
		FPS            float64 `json:"fps"`
		TestMode       bool    `json:"testMode"`
		ProcessedVideo string  `json:"processedVideo"`
		Analysis       struct {
			Feedback struct {
				MadeCount int    `json:"madeCount"`
				Accuracy  string `json:"accuracy"`
			} `json:"feedback"`
			Analysis []json.RawMessage `json:"analysis"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if decoded.SessionID == "" || !decoded.TestMode || decoded.FPS != 1 {
		t.Fatalf("unexpected result header: %+v", decoded)
	}
	if decoded.Prompt == "" {
		t.Fatal("expected default prompt to be submitted")
	}
	if decoded.Analysis.Feedback.MadeCount != 2 || decoded.Analysis.Feedback.Accuracy != "66.7%" {
		t.Fatalf("unexpected feedback: %+v", decoded.Analysis.Feedback)
	}
	if len(decoded.Analysis.Analysis) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(decoded.Analysis.Analysis))
	}
	if srv.field("testMode") != "true" {
		t.Fatal("expected testMode submitted")
	}
}

func TestAnalyzeWithoutFeedback(t *testing.T) {
	srv := newAnalysisServer(t, http.StatusOK, `{"processedVideo":"/processed/clip.mp4","analysis":null}`)
	env := setupCLITestEnv(t, srv.URL)
	video := writeVideo(t, env.baseDir, "clip.mp4")

	out, _, err := runCLI(t, []string{"analyze", video, "--quiet"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "No analysis available for this video.")
}

func TestAnalyzeReportsServerError(t *testing.T) {
	srv := newAnalysisServer(t, http.StatusInternalServerError, `{"error":"model overloaded"}`)
	env := setupCLITestEnv(t, srv.URL)
	video := writeVideo(t, env.baseDir, "clip.mp4")

	_, _, err := runCLI(t, []string{"analyze", video, "--quiet"}, env.configPath)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	requireContains(t, err.Error(), "model overloaded")
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	env := setupCLITestEnv(t, "http://127.0.0.1:1")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unsupported format", args: []string{"analyze", writeVideo(t, env.baseDir, "notes.txt")}},
		{name: "missing file", args: []string{"analyze", filepath.Join(env.baseDir, "absent.mp4")}},
		{name: "fps out of range", args: []string{"analyze", writeVideo(t, env.baseDir, "clip.mp4"), "--fps", "50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, env.configPath)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAnalyzeRejectsFrameOutsideReport(t *testing.T) {
	srv := newAnalysisServer(t, http.StatusOK, analysisResponse)
	env := setupCLITestEnv(t, srv.URL)
	video := writeVideo(t, env.baseDir, "clip.mp4")

	out, _, err := runCLI(t, []string{"analyze", video, "--quiet", "--frame", "5"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, err.Error(), "frame 5 out of range (report has 2 entries)")
	if strings.Contains(out, "Analysis Results") {
		t.Fatalf("expected no report, got %s", out)
	}

	out, _, err = runCLI(t, []string{"analyze", video, "--quiet", "--frame", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Follow through held")
}

func TestStageLabel(t *testing.T) {
	if got := stageLabel(session.FileSelected); got != "File Selected" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := stageLabel(session.Complete); got != "Complete" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestFormatFPS(t *testing.T) {
	cases := map[float64]string{1: "1", 0.5: "0.5", 2.25: "2.25", 10: "10"}
	for in, want := range cases {
		if got := formatFPS(in); got != want {
			t.Fatalf("formatFPS(%v) = %q, want %q", in, got, want)
		}
	}
}
