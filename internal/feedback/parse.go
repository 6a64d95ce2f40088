package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes an analysis payload ({feedback, analysis}) and builds its view.
func Parse(data []byte) (View, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return View{}, fmt.Errorf("feedback: decode payload: %w", err)
	}
	return BuildView(p)
}

// Document is a full service response: the processed video reference plus the
// analysis view.
type Document struct {
	ProcessedVideo string
	View           View
}

type responseEnvelope struct {
	ProcessedVideo string          `json:"processedVideo"`
	Analysis       json.RawMessage `json:"analysis"`
}

// ParseResponse decodes a service response ({processedVideo, analysis}). A
// missing or null analysis object returns ErrNoAnalysis with the document
// still populated.
func ParseResponse(data []byte) (Document, error) {
	var env responseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Document{}, fmt.Errorf("feedback: decode response: %w", err)
	}
	doc := Document{ProcessedVideo: strings.TrimSpace(env.ProcessedVideo)}
	raw := bytes.TrimSpace(env.Analysis)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		doc.View, _ = BuildView(Payload{})
		return doc, ErrNoAnalysis
	}
	view, err := Parse(raw)
	doc.View = view
	return doc, err
}

// ParseDocument accepts either a full service response or a bare analysis
// payload, which is how saved reports are read back.
func ParseDocument(data []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("feedback: decode document: %w", err)
	}
	if _, ok := probe["processedVideo"]; ok {
		return ParseResponse(data)
	}
	if analysis, ok := probe["analysis"]; ok {
		if trimmed := bytes.TrimSpace(analysis); len(trimmed) > 0 && trimmed[0] == '{' {
			return ParseResponse(data)
		}
	}
	view, err := Parse(data)
	return Document{View: view}, err
}
