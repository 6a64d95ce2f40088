package mpv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventKind classifies a decoded IPC message.
type EventKind int

const (
	EventNone EventKind = iota
	EventProgress
	EventDuration
	EventPause
	EventReady
	EventError
	EventReply
)

// Event is one decoded IPC message.
type Event struct {
	Kind     EventKind
	Fraction float64
	Seconds  float64
	Paused   bool
	Err      error
}

type message struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
	Error     string          `json:"error"`
	RequestID int64           `json:"request_id"`
}

// decodeEvent translates one line of mpv IPC output.
func decodeEvent(line []byte) (Event, error) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		return Event{}, fmt.Errorf("decode mpv message: %w", err)
	}

	switch msg.Event {
	case "":
		if msg.Error != "" && msg.Error != "success" {
			return Event{Kind: EventReply, Err: fmt.Errorf("mpv request %d: %s", msg.RequestID, msg.Error)}, nil
		}
		return Event{Kind: EventNone}, nil
	case "property-change":
		return decodeProperty(msg)
	case "file-loaded":
		return Event{Kind: EventReady}, nil
	case "end-file":
		if msg.Reason != "error" {
			return Event{Kind: EventNone}, nil
		}
		detail := strings.TrimSpace(msg.FileError)
		if detail == "" {
			detail = "playback failed"
		}
		return Event{Kind: EventError, Err: errors.New(detail)}, nil
	default:
		return Event{Kind: EventNone}, nil
	}
}

func decodeProperty(msg message) (Event, error) {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return Event{Kind: EventNone}, nil
	}
	switch msg.Name {
	case "percent-pos":
		var pct float64
		if err := json.Unmarshal(msg.Data, &pct); err != nil {
			return Event{}, fmt.Errorf("decode percent-pos: %w", err)
		}
		return Event{Kind: EventProgress, Fraction: pct / 100}, nil
	case "duration":
		var seconds float64
		if err := json.Unmarshal(msg.Data, &seconds); err != nil {
			return Event{}, fmt.Errorf("decode duration: %w", err)
		}
		return Event{Kind: EventDuration, Seconds: seconds}, nil
	case "pause":
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return Event{}, fmt.Errorf("decode pause: %w", err)
		}
		return Event{Kind: EventPause, Paused: paused}, nil
	default:
		return Event{Kind: EventNone}, nil
	}
}
