package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNoAnalysis signals that the payload carried no feedback object.
var ErrNoAnalysis = errors.New("no analysis available")

// Accuracy keeps the service's accuracy token verbatim, so a pre-formatted
// string such as "67%" and a numeric ratio such as 0.67 both re-encode
// byte-for-byte.
type Accuracy struct {
	raw json.RawMessage
}

// AccuracyFromString builds a string-valued accuracy.
func AccuracyFromString(value string) Accuracy {
	encoded, _ := json.Marshal(value)
	return Accuracy{raw: encoded}
}

// AccuracyFromRatio builds a numeric accuracy.
func AccuracyFromRatio(value float64) Accuracy {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Accuracy{}
	}
	return Accuracy{raw: json.RawMessage(strconv.FormatFloat(value, 'f', -1, 64))}
}

// IsZero reports whether the payload omitted accuracy.
func (a Accuracy) IsZero() bool {
	return len(a.raw) == 0 || bytes.Equal(a.raw, []byte("null"))
}

// Raw returns a copy of the original JSON token.
func (a Accuracy) Raw() json.RawMessage {
	return append(json.RawMessage(nil), a.raw...)
}

// String renders the accuracy for display: strings are unquoted, numbers are
// shown as sent.
func (a Accuracy) String() string {
	if a.IsZero() {
		return "n/a"
	}
	var text string
	if err := json.Unmarshal(a.raw, &text); err == nil {
		return text
	}
	return string(a.raw)
}

func (a Accuracy) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte("null"), nil
	}
	return a.Raw(), nil
}

func (a *Accuracy) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return errors.New("feedback: invalid accuracy token")
	}
	a.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// Feedback is the aggregate shot statistics returned by the service.
type Feedback struct {
	TotalFrames int      `json:"totalFrames"`
	ShotCount   int      `json:"shotCount"`
	MadeCount   int      `json:"madeCount"`
	Accuracy    Accuracy `json:"accuracy"`
}

// FrameAnalysis is one sampled frame's commentary.
type FrameAnalysis struct {
	Frame     int     `json:"frame"`
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"analysis"`
}

// TimestampLabel renders the timestamp as seconds, e.g. "2.5s".
func (f FrameAnalysis) TimestampLabel() string {
	return strconv.FormatFloat(f.Timestamp, 'f', -1, 64) + "s"
}

// Payload is the analysis object exactly as the service sends it.
type Payload struct {
	Feedback *Feedback       `json:"feedback"`
	Analysis []FrameAnalysis `json:"analysis"`
}

// View is the normalized, read-only result of BuildView.
type View struct {
	feedback    Feedback
	frames      []FrameAnalysis
	hasAnalysis bool
}

// BuildView normalizes p. A nil Feedback returns ErrNoAnalysis alongside an
// empty view; a missing frame list yields an empty, non-nil slice.
func BuildView(p Payload) (View, error) {
	if p.Feedback == nil {
		return View{frames: []FrameAnalysis{}}, ErrNoAnalysis
	}
	frames := make([]FrameAnalysis, len(p.Analysis))
	for i, frame := range p.Analysis {
		if frame.Frame < 0 {
			frame.Frame = 0
		}
		if frame.Timestamp < 0 || math.IsNaN(frame.Timestamp) {
			frame.Timestamp = 0
		}
		frames[i] = frame
	}
	fb := *p.Feedback
	fb.Accuracy = Accuracy{raw: p.Feedback.Accuracy.Raw()}
	return View{feedback: fb, frames: frames, hasAnalysis: true}, nil
}

// HasAnalysis reports whether the view was built from a feedback object.
func (v View) HasAnalysis() bool {
	return v.hasAnalysis
}

// Feedback returns the aggregate statistics.
func (v View) Feedback() Feedback {
	return v.feedback
}

// Len returns the number of frame entries.
func (v View) Len() int {
	return len(v.frames)
}

// Frames returns a copy of the frame entries in their original order.
func (v View) Frames() []FrameAnalysis {
	out := make([]FrameAnalysis, len(v.frames))
	copy(out, v.frames)
	return out
}

// Frame returns entry i.
func (v View) Frame(i int) (FrameAnalysis, bool) {
	if i < 0 || i >= len(v.frames) {
		return FrameAnalysis{}, false
	}
	return v.frames[i], true
}

// FrameAt returns the index of the entry with the greatest timestamp not after
// seconds. Entries are scanned in order and the first of equal timestamps wins.
func (v View) FrameAt(seconds float64) (int, bool) {
	best := -1
	for i, frame := range v.frames {
		if frame.Timestamp > seconds {
			continue
		}
		if best == -1 || frame.Timestamp > v.frames[best].Timestamp {
			best = i
		}
	}
	return best, best >= 0
}

// Payload re-encodes the view in the service's shape.
func (v View) Payload() Payload {
	if !v.hasAnalysis {
		return Payload{Analysis: v.Frames()}
	}
	fb := v.feedback
	return Payload{Feedback: &fb, Analysis: v.Frames()}
}

func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Payload())
}

// FrameLabel is the display label for the entry at position i.
func FrameLabel(i int) string {
	return "Frame " + strconv.Itoa(i+1)
}

// Preview returns the first maxLines lines of text, marking truncation.
func Preview(text string, maxLines int) string {
	text = strings.TrimSpace(text)
	if maxLines <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n") + " ..."
}
