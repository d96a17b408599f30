// Package extract turns document images into structured field lists by
// prompting a multimodal model and parsing its JSON response defensively.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/parser"
	"github.com/tts885/musubisuite/internal/port"
)

const (
	extractTemperature = 0.1
	extractMaxTokens   = 8000
)

// Processor runs the document field extraction pipeline.
type Processor struct {
	gen port.TextGenerator
}

func NewProcessor(gen port.TextGenerator) *Processor {
	return &Processor{gen: gen}
}

// wireField mirrors the JSON shape the prompt requests. Confidence and
// boundingBox are pointers so absent keys can be told apart from zeroes.
type wireField struct {
	Label       string              `json:"label"`
	Value       json.RawMessage     `json:"value"`
	Confidence  *float64            `json:"confidence"`
	BoundingBox *domain.BoundingBox `json:"boundingBox"`
}

type wireResult struct {
	Fields *[]wireField `json:"fields"`
}

// ExtractDocumentFields sends the image through the vision model and parses
// the response into an ExtractionResult. Fields get sequential ids; the
// overall confidence is the mean of the per-field scores.
func (p *Processor) ExtractDocumentFields(ctx context.Context, ref port.ProviderRef, image []byte, mime string, docType domain.DocumentType) (*domain.ExtractionResult, error) {
	if !domain.ValidDocumentTypes[docType] {
		return nil, fmt.Errorf("document type %q: %w", docType, domain.ErrInvalidDocumentType)
	}

	temp := extractTemperature
	raw, err := p.gen.GenerateMultimodal(ctx, ref, port.GenerateRequest{
		Prompt:      buildPrompt(docType),
		Image:       image,
		ImageMIME:   mime,
		MaxTokens:   extractMaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(raw)
}

// Validate reports whether an extraction result is structurally sound:
// at least one field, every field labeled, confidences within [0,1], and
// every present bounding box fully non-negative.
func Validate(result *domain.ExtractionResult) bool {
	if result == nil || len(result.Fields) == 0 {
		return false
	}
	for _, f := range result.Fields {
		if f.Label == "" {
			return false
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			return false
		}
		if b := f.BoundingBox; b != nil {
			if b.X < 0 || b.Y < 0 || b.Width < 0 || b.Height < 0 {
				return false
			}
		}
	}
	return true
}

func parseResponse(raw string) (*domain.ExtractionResult, error) {
	payload := parser.ExtractJSONPayload(raw)

	var wire wireResult
	if err := parser.UnmarshalLenient(payload, &wire); err != nil {
		return nil, fmt.Errorf("response is not parseable JSON (%s): %w", snippet(raw), domain.ErrMalformedModelOutput)
	}
	if wire.Fields == nil {
		return nil, fmt.Errorf(`response JSON has no "fields" key (%s): %w`, snippet(raw), domain.ErrSchemaViolation)
	}

	result := &domain.ExtractionResult{Fields: make([]domain.ExtractedField, 0, len(*wire.Fields))}
	var confidenceSum float64
	for i, wf := range *wire.Fields {
		field := domain.ExtractedField{
			ID:          fmt.Sprintf("field-%d", i+1),
			Label:       wf.Label,
			Value:       decodeValue(wf.Value),
			BoundingBox: wf.BoundingBox,
		}
		if wf.Label == "" {
			log.Printf("extract.parseResponse: field %d has no label", i+1)
		}
		if wf.Confidence != nil {
			field.Confidence = *wf.Confidence
		} else {
			log.Printf("extract.parseResponse: field %d (%s) has no confidence", i+1, wf.Label)
		}
		confidenceSum += field.Confidence
		result.Fields = append(result.Fields, field)
	}
	if len(result.Fields) > 0 {
		result.OverallConfidence = confidenceSum / float64(len(result.Fields))
	}
	return result, nil
}

// decodeValue renders a field value as a string whatever JSON type the model
// chose for it.
func decodeValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
