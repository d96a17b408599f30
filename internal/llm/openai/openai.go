// Package openai speaks the OpenAI chat completions protocol, for both the
// hosted API and compatible endpoints.
package openai

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

const defaultBaseURL = "https://api.openai.com"

func init() {
	llm.RegisterAdapter(domain.ProviderOpenAI, &Adapter{})
}

type Adapter struct {
	// HTTPClient overrides the transport, mainly for tests. Nil means
	// http.DefaultClient. Timeouts come from the request context.
	HTTPClient *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (a *Adapter) Stream(ctx context.Context, p llm.Params) (port.ChunkStream, error) {
	body := chatRequest{
		Model:       p.Provider.ModelName,
		Messages:    []chatMessage{{Role: "user", Content: p.Prompt}},
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
				stream.Fail(&llm.CallError{Provider: "openai", Message: "reading stream", Err: err})
				return
			}
			if ev.Data == "[DONE]" {
				return
			}
			var chunk chatChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.Delta.Content != "" {
				if !stream.Emit(choice.Delta.Content) {
					return
				}
			}
			if choice.FinishReason == "length" {
				stream.Fail(&llm.CallError{Provider: "openai", Message: "response truncated at max_tokens", Truncated: true})
				return
			}
		}
	}()
	return stream, nil
}

func (a *Adapter) GenerateVision(ctx context.Context, p llm.Params) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", p.ImageMIME, base64.StdEncoding.EncodeToString(p.Image))
	body := chatRequest{
		Model: p.Provider.ModelName,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: p.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
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

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &llm.CallError{Provider: "openai", Message: "decoding response", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &llm.CallError{Provider: "openai", Message: "response contained no choices"}
	}
	choice := out.Choices[0]
	if choice.FinishReason == "length" {
		return "", &llm.CallError{Provider: "openai", Message: "response truncated at max_tokens", Truncated: true}
	}
	return choice.Message.Content, nil
}

// post sends the request and maps non-2xx statuses to a CallError.
func (a *Adapter) post(ctx context.Context, p llm.Params, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}
	base := strings.TrimRight(p.Provider.Endpoint, "/")
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	if p.Provider.OrganizationID != "" {
		req.Header.Set("OpenAI-Organization", p.Provider.OrganizationID)
	}

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &llm.CallError{Provider: "openai", Message: "request failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, llm.APIError("openai", resp)
	}
	return resp, nil
}
