package report_test

import (
	"bytes"
	"strings"
	"testing"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/report"
)

func sampleView(t *testing.T) feedback.View {
	t.Helper()
	view, err := feedback.BuildView(feedback.Payload{
		Feedback: &feedback.Feedback{TotalFrames: 3, ShotCount: 2, MadeCount: 1, Accuracy: feedback.AccuracyFromString("50%")},
		Analysis: []feedback.FrameAnalysis{
			{Frame: 0, Timestamp: 0, Text: "Elbow tucked"},
			{Frame: 30, Timestamp: 1, Text: "line one\nline two\nline three\nline four"},
			{Frame: 60, Timestamp: 2.5, Text: "Good arc"},
		},
	})
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	return view
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestStatsIncludesAllCards(t *testing.T) {
	// Headers are upper-cased by the table style.
	out := strings.ToUpper(report.Stats(sampleView(t)))
	for _, want := range []string{"TOTAL FRAMES", "SHOTS ATTEMPTED", "SHOTS MADE", "ACCURACY", "50%"} {
		requireContains(t, out, want)
	}
}

func TestFramesPreviewsUnselectedEntries(t *testing.T) {
	view := sampleView(t)
	out := report.Frames(view, feedback.Selection{}, report.Options{PreviewLines: 2})
	requireContains(t, out, "Elbow tucked")
	requireContains(t, out, "2.5s")
	requireContains(t, out, "line two ...")
	if strings.Contains(out, "line four") {
		t.Fatalf("expected collapsed text, got %s", out)
	}

	var sel feedback.Selection
	sel.Toggle(view, 1)
	out = report.Frames(view, sel, report.Options{PreviewLines: 2})
	requireContains(t, out, "line four")
}

func TestFramesKeepsInputOrder(t *testing.T) {
	out := report.Frames(sampleView(t), feedback.Selection{}, report.Options{})
	first := strings.Index(out, "Elbow tucked")
	last := strings.Index(out, "Good arc")
	if first < 0 || last < 0 || first > last {
		t.Fatalf("expected frames in input order, got %s", out)
	}
}

func TestFrameDetail(t *testing.T) {
	detail, ok := report.FrameDetail(sampleView(t), 2)
	if !ok {
		t.Fatal("expected frame detail")
	}
	requireContains(t, detail, "Frame 3 (frame 60 at 2.5s)")
	requireContains(t, detail, "Good arc")
	if _, ok := report.FrameDetail(sampleView(t), 9); ok {
		t.Fatal("expected out-of-range frame to be rejected")
	}
}

func TestRenderFullReport(t *testing.T) {
	var buf bytes.Buffer
	doc := feedback.Document{ProcessedVideo: "http://localhost:3001/processed/out.mp4", View: sampleView(t)}
	if err := report.Render(&buf, doc, feedback.Selection{}, report.Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	requireContains(t, out, "Analysis Results")
	requireContains(t, out, "Processed video: http://localhost:3001/processed/out.mp4")
	requireContains(t, out, "Frame Analysis (3)")
	requireContains(t, out, "Total Analysis: 3 frames processed")
	requireContains(t, out, "Performance: 2 shots attempted, 1 made (50% accuracy)")
}

func TestRenderWithoutAnalysisSkipsFrameSections(t *testing.T) {
	view, _ := feedback.BuildView(feedback.Payload{})
	var buf bytes.Buffer
	if err := report.Render(&buf, feedback.Document{ProcessedVideo: "/out.mp4", View: view}, feedback.Selection{}, report.Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	requireContains(t, out, "No analysis available")
	if strings.Contains(out, "Frame Analysis") || strings.Contains(out, "Summary") {
		t.Fatalf("expected no frame sections, got %s", out)
	}
}

func TestRenderWithEmptyFrameList(t *testing.T) {
	view, err := feedback.BuildView(feedback.Payload{Feedback: &feedback.Feedback{}})
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, feedback.Document{View: view}, feedback.Selection{}, report.Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	requireContains(t, buf.String(), "No frame analysis entries.")
}
