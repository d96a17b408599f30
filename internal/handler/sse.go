package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tts885/musubisuite/internal/port"
)

// sseHeaders prepares the response for server-sent events.
func sseHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
}

// sseEvent writes one event frame and flushes it to the client.
func sseEvent(c *gin.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// pumpStream drains a chunk stream into SSE frames. Every stream ends with
// exactly one terminal frame: {"done": true} on success, {"error": ...}
// otherwise. Errors after the first byte cannot change the HTTP status, so
// the terminal frame is the only reliable signal.
func pumpStream(c *gin.Context, stream port.ChunkStream) {
	defer stream.Close()
	sseHeaders(c)

	for {
		text, err := stream.Recv()
		if err == io.EOF {
			_ = sseEvent(c, gin.H{"done": true})
			return
		}
		if err != nil {
			_, _, msg := MapDomainError(err)
			_ = sseEvent(c, gin.H{"error": msg})
			return
		}
		if writeErr := sseEvent(c, gin.H{"content": text}); writeErr != nil {
			// Client went away; stop producing.
			return
		}
	}
}
