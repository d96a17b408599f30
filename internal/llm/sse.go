package llm

import (
	"bufio"
	"io"
	"strings"
)

// SSEEvent is one server-sent event as delivered by a vendor streaming API.
type SSEEvent struct {
	Event string
	Data  string
}

// SSEReader splits a text/event-stream body into events. Multi-line data
// fields are joined with newlines; comment lines (leading colon) are skipped.
type SSEReader struct {
	scanner *bufio.Scanner
	event   string
	data    []string
}

func NewSSEReader(r io.Reader) *SSEReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &SSEReader{scanner: sc}
}

// Next returns the next complete event. It returns io.EOF when the body is
// exhausted.
func (r *SSEReader) Next() (SSEEvent, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Blank line terminates the pending event.
		if line == "" {
			if len(r.data) > 0 || r.event != "" {
				ev := SSEEvent{Event: r.event, Data: strings.Join(r.data, "\n")}
				r.event = ""
				r.data = nil
				return ev, nil
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "event:"):
			r.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			r.data = append(r.data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := r.scanner.Err(); err != nil {
		return SSEEvent{}, err
	}
	// Flush an event left pending by a body that ends without a blank line.
	if len(r.data) > 0 || r.event != "" {
		ev := SSEEvent{Event: r.event, Data: strings.Join(r.data, "\n")}
		r.event = ""
		r.data = nil
		return ev, nil
	}
	return SSEEvent{}, io.EOF
}
