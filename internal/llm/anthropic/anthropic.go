// Package anthropic speaks the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/llm"
	"github.com/tts885/musubisuite/internal/port"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

func init() {
	llm.RegisterAdapter(domain.ProviderAnthropic, &Adapter{})
}

type Adapter struct {
	HTTPClient *http.Client
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
}

type message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// streamEvent covers the event payloads the adapter cares about:
// content_block_delta carries text, message_delta carries the stop reason.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (a *Adapter) Stream(ctx context.Context, p llm.Params) (port.ChunkStream, error) {
	body := messagesRequest{
		Model:       p.Provider.ModelName,
		Messages:    []message{{Role: "user", Content: p.Prompt}},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Stream:      true,
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	resp, err := a.post(ctx, p, body)
	if err != nil {
		cancel()
		return nil, err
	}

	stream := llm.NewStream(cancel, resp.Body)
	go func() {
		defer stream.Finish()
		reader := llm.NewSSEReader(resp.Body)
		for {
			ev, err := reader.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				stream.Fail(&llm.CallError{Provider: "anthropic", Message: "reading stream", Err: err})
				return
			}
			var event streamEvent
			if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
				continue
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					if !stream.Emit(event.Delta.Text) {
						return
					}
				}
			case "message_delta":
				if event.Delta.StopReason == "max_tokens" {
					stream.Fail(&llm.CallError{Provider: "anthropic", Message: "response truncated at max_tokens", Truncated: true})
					return
				}
			case "message_stop":
				return
			}
		}
	}()
	return stream, nil
}

func (a *Adapter) GenerateVision(ctx context.Context, p llm.Params) (string, error) {
	body := messagesRequest{
		Model: p.Provider.ModelName,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{
					Type:      "base64",
					MediaType: p.ImageMIME,
					Data:      base64.StdEncoding.EncodeToString(p.Image),
				}},
				{Type: "text", Text: p.Prompt},
			},
		}},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	resp, err := a.post(ctx, p, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &llm.CallError{Provider: "anthropic", Message: "decoding response", Err: err}
	}
	if out.StopReason == "max_tokens" {
		return "", &llm.CallError{Provider: "anthropic", Message: "response truncated at max_tokens", Truncated: true}
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &llm.CallError{Provider: "anthropic", Message: "response contained no text content"}
	}
	return sb.String(), nil
}

func (a *Adapter) post(ctx context.Context, p llm.Params, body messagesRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshaling request: %w", err)
	}
	base := strings.TrimRight(p.Provider.Endpoint, "/")
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anthropic: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &llm.CallError{Provider: "anthropic", Message: "request failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, llm.APIError("anthropic", resp)
	}
	return resp, nil
}
