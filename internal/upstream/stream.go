package upstream

import (
	"context"

	"bedrockproxy/internal/streamerr"
)

// Stream is a single-use sequence of frames. Consuming it drives network
// reads. It is not safe for concurrent use.
type Stream struct {
	r      eventReader
	cur    Frame
	err    error
	done   bool
	closed bool
}

// Next blocks until the next frame arrives, the upstream closes the stream, or
// ctx is done. It returns false once the sequence is over; Err then reports
// why, nil meaning a clean end.
func (s *Stream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	select {
	case ev, ok := <-s.r.Events():
		if !ok {
			s.done = true
			if err := s.r.Err(); err != nil {
				s.err = streamerr.UpstreamStream(err)
			}
			return false
		}
		s.cur = frameOf(ev)
		return true
	case <-ctx.Done():
		s.done = true
		s.err = ctx.Err()
		return false
	}
}

// Frame returns the frame read by the last successful Next.
func (s *Stream) Frame() Frame { return s.cur }

// Err returns the error that ended the sequence, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying response body. Safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	return s.r.Close()
}
