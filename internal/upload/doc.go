// Package upload submits a video to the analysis service and reports transfer
// progress.
//
// Track streams a multipart body with an exact Content-Length and reports
// integer percentages derived from bytes handed to the transport. Callbacks
// for one transfer are serialized: percentages never decrease, OnTransferred
// fires once the body is fully sent, and exactly one of OnComplete or OnError
// ends the transfer. Nothing fires after the terminal callback.
//
// Failure reasons follow a fixed fallback chain (server message, transport
// message, generic text) so callers never surface an empty reason.
package upload
