package llm

import (
	"context"
	"io"
	"sync"
)

type chunk struct {
	text string
	err  error
}

// Stream is a finite, single-pass sequence of generated text chunks, produced
// lazily by an adapter goroutine. The consumer drives production by calling
// Recv; at most one chunk is buffered ahead. Close stops production and
// releases the underlying transport; it is safe to call at any time and more
// than once.
type Stream struct {
	ch        chan chunk
	quit      chan struct{}
	cancel    context.CancelFunc
	body      io.Closer
	closeOnce sync.Once
}

// NewStream creates a stream whose producer releases cancel and body on Close.
// Either may be nil.
func NewStream(cancel context.CancelFunc, body io.Closer) *Stream {
	return &Stream{
		ch:     make(chan chunk, 1),
		quit:   make(chan struct{}),
		cancel: cancel,
		body:   body,
	}
}

// Recv returns the next text chunk. It returns io.EOF when the stream has
// completed normally or was closed, and the terminal error otherwise.
func (s *Stream) Recv() (string, error) {
	select {
	case c, ok := <-s.ch:
		if !ok {
			return "", io.EOF
		}
		if c.err != nil {
			_ = s.Close()
			return "", c.err
		}
		return c.text, nil
	case <-s.quit:
		return "", io.EOF
	}
}

// Close cancels the producer and releases the transport connection.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		if s.cancel != nil {
			s.cancel()
		}
		if s.body != nil {
			_ = s.body.Close()
		}
	})
	return nil
}

// Emit hands one chunk to the consumer. It returns false when the consumer
// has closed the stream, signalling the producer to stop.
func (s *Stream) Emit(text string) bool {
	select {
	case s.ch <- chunk{text: text}:
		return true
	case <-s.quit:
		return false
	}
}

// Fail delivers a terminal error to the consumer.
func (s *Stream) Fail(err error) {
	select {
	case s.ch <- chunk{err: err}:
	case <-s.quit:
	}
}

// Finish marks normal end of stream. Must be the producer's last call after
// all Emit and Fail calls; typically deferred.
func (s *Stream) Finish() {
	close(s.ch)
}
