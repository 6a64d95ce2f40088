package upload

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// FallbackReason is reported when neither the server nor the transport
// supplied a message.
const FallbackReason = "Failed to process video"

// NormalizeReason picks the user-facing failure text: the server-supplied
// message, then the transport message, then FallbackReason.
func NormalizeReason(serverMsg string, err error) string {
	if msg := strings.TrimSpace(serverMsg); msg != "" {
		return msg
	}
	if msg := transportMessage(err); msg != "" {
		return msg
	}
	return FallbackReason
}

func transportMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "Upload canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		if urlErr.Timeout() {
			return "Request timed out"
		}
		return strings.TrimSpace(urlErr.Err.Error())
	}
	return strings.TrimSpace(err.Error())
}
