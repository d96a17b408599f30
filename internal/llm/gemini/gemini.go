// Package gemini speaks the Google Gemini generateContent API.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com"

func init() {
	llm.RegisterAdapter(domain.ProviderGoogle, &Adapter{})
}

type Adapter struct {
	HTTPClient *http.Client
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (a *Adapter) Stream(ctx context.Context, p llm.Params) (port.ChunkStream, error) {
	body := a.request(p, []part{{Text: p.Prompt}})
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	resp, err := a.post(ctx, p, ":streamGenerateContent?alt=sse", body)
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
				stream.Fail(&llm.CallError{Provider: "google", Message: "reading stream", Err: err})
				return
			}
			var chunk generateResponse
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				continue
			}
			if len(chunk.Candidates) == 0 {
				continue
			}
			candidate := chunk.Candidates[0]
			for _, pt := range candidate.Content.Parts {
				if pt.Text != "" {
					if !stream.Emit(pt.Text) {
						return
					}
				}
			}
			if candidate.FinishReason == "MAX_TOKENS" {
				stream.Fail(&llm.CallError{Provider: "google", Message: "response truncated at max output tokens", Truncated: true})
				return
			}
		}
	}()
	return stream, nil
}

func (a *Adapter) GenerateVision(ctx context.Context, p llm.Params) (string, error) {
	body := a.request(p, []part{
		{Text: p.Prompt},
		{InlineData: &inlineData{MIMEType: p.ImageMIME, Data: base64.StdEncoding.EncodeToString(p.Image)}},
	})
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	resp, err := a.post(ctx, p, ":generateContent", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &llm.CallError{Provider: "google", Message: "decoding response", Err: err}
	}
	if len(out.Candidates) == 0 {
		return "", &llm.CallError{Provider: "google", Message: "response contained no candidates"}
	}
	candidate := out.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return "", &llm.CallError{Provider: "google", Message: "response truncated at max output tokens", Truncated: true}
	}
	var sb strings.Builder
	for _, pt := range candidate.Content.Parts {
		sb.WriteString(pt.Text)
	}
	if sb.Len() == 0 {
		return "", &llm.CallError{Provider: "google", Message: "response contained no text parts"}
	}
	return sb.String(), nil
}

func (a *Adapter) request(p llm.Params, parts []part) generateRequest {
	return generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: p.MaxTokens,
			Temperature:     p.Temperature,
		},
	}
}

func (a *Adapter) post(ctx context.Context, p llm.Params, method string, body generateRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshaling request: %w", err)
	}
	base := strings.TrimRight(p.Provider.Endpoint, "/")
	if base == "" {
		base = defaultBaseURL
	}
	url := fmt.Sprintf("%s/v1beta/models/%s%s", base, p.Provider.ModelName, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.APIKey)

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &llm.CallError{Provider: "google", Message: "request failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, llm.APIError("google", resp)
	}
	return resp, nil
}
