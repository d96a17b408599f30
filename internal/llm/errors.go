package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tts885/musubisuite/internal/domain"
)

// CallError is the single error shape adapters surface for transport and
// API-level failures. Vendor-specific detail is carried as context; callers
// match on the domain sentinels via errors.Is.
type CallError struct {
	Provider  string // provider kind that failed
	Status    int    // HTTP status, 0 when not applicable
	Message   string // truncated vendor message
	Truncated bool   // vendor signalled a max-token stop
	Err       error  // underlying cause, may be nil
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s api call failed (status %d): %s", e.Provider, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s api call failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s api call failed: %s", e.Provider, e.Message)
}

func (e *CallError) Unwrap() []error {
	errs := []error{domain.ErrProviderCallFailed}
	if e.Truncated {
		errs = append(errs, domain.ErrTruncatedOutput)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// APIError builds a CallError from a non-2xx vendor response. It pulls the
// message out of the common {"error": {"message": ...}} shape when present
// and falls back to the raw body. The response body is consumed but not
// closed.
func APIError(provider string, resp *http.Response) *CallError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}
	return &CallError{Provider: provider, Status: resp.StatusCode, Message: truncateMsg(msg, 500)}
}

// truncateMsg bounds vendor messages carried in errors.
func truncateMsg(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
