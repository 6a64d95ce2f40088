package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"sportanalyzer/internal/media"
)

// Parameters are the analysis options submitted with the video.
type Parameters struct {
	Prompt   string
	FPS      float64
	TestMode bool
	// RequestID is sent as X-Request-ID when set.
	RequestID string
}

// envelope is the multipart framing around the streamed file bytes.
type envelope struct {
	contentType string
	prefix      []byte
	trailer     []byte
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildEnvelope renders every part except the file body so the request can be
// streamed with a known length. Field order is video, prompt, fps, testMode.
func buildEnvelope(file media.File, params Parameters) (envelope, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentTypeFor(file))
	if _, err := writer.CreatePart(header); err != nil {
		return envelope{}, fmt.Errorf("build multipart: video part: %w", err)
	}
	prefix := append([]byte(nil), buf.Bytes()...)
	buf.Reset()

	fields := []struct{ name, value string }{
		{"prompt", params.Prompt},
		{"fps", strconv.FormatFloat(params.FPS, 'f', -1, 64)},
		{"testMode", strconv.FormatBool(params.TestMode)},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return envelope{}, fmt.Errorf("build multipart: %s: %w", field.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return envelope{}, fmt.Errorf("build multipart: close: %w", err)
	}

	return envelope{
		contentType: writer.FormDataContentType(),
		prefix:      prefix,
		trailer:     append([]byte(nil), buf.Bytes()...),
	}, nil
}

func (e envelope) length(fileSize int64) int64 {
	return int64(len(e.prefix)) + fileSize + int64(len(e.trailer))
}

func (e envelope) body(content io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(e.prefix), content, bytes.NewReader(e.trailer))
}

func contentTypeFor(file media.File) string {
	switch file.Ext() {
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	}
	if ct := mime.TypeByExtension(file.Ext()); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// countingReader reports every successful read and signals once at EOF.
type countingReader struct {
	r      io.Reader
	sent   int64
	onRead func(sent int64)
	onEOF  func()
	eof    bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		c.onRead(c.sent)
	}
	if err == io.EOF && !c.eof {
		c.eof = true
		c.onEOF()
	}
	return n, err
}
