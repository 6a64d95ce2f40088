package logs_test

import (
	"strings"
	"testing"

	"sportanalyzer/internal/logs"
)

const record = `{"ts":"2026-01-02T03:04:05.678Z","level":"info","msg":"session stage changed","component":"session","session_id":"a1b2","stage":"uploading","percent":40}`

func TestParseEntry(t *testing.T) {
	entry, ok := logs.ParseEntry(record)
	if !ok {
		t.Fatal("expected record to parse")
	}
	if entry.Level != "info" || entry.Message != "session stage changed" || entry.Component != "session" || entry.SessionID != "a1b2" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Time.IsZero() {
		t.Fatal("expected timestamp")
	}
	if len(entry.Attrs) != 2 || entry.Attrs["stage"] != "uploading" {
		t.Fatalf("unexpected attrs: %#v", entry.Attrs)
	}

	if _, ok := logs.ParseEntry("plain text"); ok {
		t.Fatal("expected plain text to be rejected")
	}
}

func TestEntryFormat(t *testing.T) {
	entry, _ := logs.ParseEntry(record)
	line := entry.Format()
	for _, want := range []string{"INFO", "[session]", "session stage changed", "session_id=a1b2", "percent=40 stage=uploading"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestSessionFilter(t *testing.T) {
	match := logs.SessionFilter("a1b2")
	if !match(record) {
		t.Fatal("expected matching session")
	}
	if match(strings.Replace(record, "a1b2", "zzzz", 1)) {
		t.Fatal("expected other session to be dropped")
	}
	if match("not json") {
		t.Fatal("expected non-JSON line to be dropped")
	}
}
