// Package streamerr defines the tagged errors that flow through a response
// stream. Each error carries a Kind so callers can label metrics and trailers
// while the text rendered to the client stays the underlying description.
package streamerr

import (
	"context"
	"errors"
)

// Kind classifies where in the stream a failure happened.
type Kind int

const (
	KindInternal Kind = iota
	KindRequest
	KindUpstreamConnection
	KindUpstreamStream
	KindMalformedFrame
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindUpstreamConnection:
		return "upstream_connection"
	case KindUpstreamStream:
		return "upstream_stream"
	case KindMalformedFrame:
		return "malformed_frame"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// Error is a failure tagged with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

// Error returns the wrapped description only; the kind is not part of the
// text relayed to clients.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(k Kind, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: k, Err: err}
}

// Request wraps a failure to build the upstream payload.
func Request(err error) error { return wrap(KindRequest, err) }

// UpstreamConnection wraps a failure to open the upstream stream.
func UpstreamConnection(err error) error { return wrap(KindUpstreamConnection, err) }

// UpstreamStream wraps a transport failure after the stream was opened.
func UpstreamStream(err error) error { return wrap(KindUpstreamStream, err) }

// MalformedFrame wraps a frame payload that is not a decodable document.
func MalformedFrame(err error) error { return wrap(KindMalformedFrame, err) }

// Internal wraps anything else, including recovered panics.
func Internal(err error) error { return wrap(KindInternal, err) }

// KindOf reports the Kind of err. Context cancellation is reported as
// KindCanceled even when it was not tagged.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}

// IsUpstreamConnection reports whether err is a stream-open failure.
func IsUpstreamConnection(err error) bool { return KindOf(err) == KindUpstreamConnection }

// IsMalformedFrame reports whether err is a frame decode failure.
func IsMalformedFrame(err error) bool { return KindOf(err) == KindMalformedFrame }
