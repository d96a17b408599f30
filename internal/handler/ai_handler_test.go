package handler_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/enrich"
	"github.com/tts885/musubisuite/internal/extract"
	"github.com/tts885/musubisuite/internal/handler"
	"github.com/tts885/musubisuite/internal/port"
	"github.com/tts885/musubisuite/internal/suggest"
	"github.com/tts885/musubisuite/mocks"
)

func newAIRouter(gen port.TextGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	aiH := handler.NewAIHandler(
		gen,
		extract.NewProcessor(gen),
		enrich.NewService(gen, nil),
		suggest.NewService(gen),
	)

	r := gin.New()
	r.POST("/ai/generate", aiH.Generate)
	r.POST("/ai/generate/stream", aiH.GenerateStream)
	r.POST("/ai/ocr", aiH.ExtractDocument)
	r.POST("/companies/fetch", aiH.FetchCompanyInfo)
	r.POST("/code-suggestions", aiH.Suggest)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func putJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate_Success(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(req port.GenerateRequest) bool {
		return req.Prompt == "hello" && req.MaxTokens == 50
	})).Return("world", nil)

	w := postJSON(t, newAIRouter(gen), "/ai/generate", `{"prompt": "hello", "max_tokens": 50}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "data": {"text": "world"}}`, w.Body.String())
}

func TestGenerate_MissingPrompt(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	w := postJSON(t, newAIRouter(gen), "/ai/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_InvalidProviderID(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	w := postJSON(t, newAIRouter(gen), "/ai/generate", `{"prompt": "hi", "provider_id": "not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_ProviderNotFound(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", domain.ErrProviderNotFound)

	w := postJSON(t, newAIRouter(gen), "/ai/generate", `{"prompt": "hi"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PROVIDER_NOT_FOUND")
}

func TestGenerateStream_Framing(t *testing.T) {
	stream := &mocks.StaticChunkStream{Chunks: []string{"Hel", "lo"}}
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).Return(stream, nil)

	w := postJSON(t, newAIRouter(gen), "/ai/generate/stream", `{"prompt": "hi"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	want := "data: {\"content\":\"Hel\"}\n\n" +
		"data: {\"content\":\"lo\"}\n\n" +
		"data: {\"done\":true}\n\n"
	assert.Equal(t, want, w.Body.String())
	assert.True(t, stream.Closed)
}

func TestGenerateStream_MidStreamError(t *testing.T) {
	stream := &mocks.StaticChunkStream{
		Chunks:   []string{"partial"},
		Terminal: domain.ErrProviderCallFailed,
	}
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).Return(stream, nil)

	w := postJSON(t, newAIRouter(gen), "/ai/generate/stream", `{"prompt": "hi"}`)

	body := w.Body.String()
	assert.Contains(t, body, "data: {\"content\":\"partial\"}\n\n")
	assert.Contains(t, body, "data: {\"error\":\"upstream ai provider call failed\"}\n\n")
	assert.NotContains(t, body, "\"done\"")
}

func TestGenerateStream_ResolveFailureIsPlainJSON(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrCredentialMissing)

	w := postJSON(t, newAIRouter(gen), "/ai/generate/stream", `{"prompt": "hi"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "CREDENTIAL_MISSING")
}

func TestExtractDocument_DataURL(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateMultimodal", mock.Anything, mock.Anything, mock.MatchedBy(func(req port.GenerateRequest) bool {
		return req.ImageMIME == "image/jpeg" && len(req.Image) == 4
	})).Return(`{"fields": [{"label": "Total", "value": "5400", "confidence": 0.9}]}`, nil)

	body := `{"image": "data:image/jpeg;base64,` + image + `", "document_type": "receipt"}`
	w := postJSON(t, newAIRouter(gen), "/ai/ocr", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"overallConfidence":0.9`)
	assert.Contains(t, w.Body.String(), `"field-1"`)
}

func TestExtractDocument_InvalidResultRejected(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte{0x01})
	cases := []struct {
		name     string
		response string
	}{
		{"no fields detected", `{"fields": []}`},
		{"percent-scale confidence", `{"fields": [{"label": "Total", "value": "5400", "confidence": 90}]}`},
		{"negative bounding box", `{"fields": [{"label": "Total", "value": "5400", "confidence": 0.9, "boundingBox": {"x": -5, "y": 0, "width": 10, "height": 10}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := new(mocks.MockTextGenerator)
			gen.On("GenerateMultimodal", mock.Anything, mock.Anything, mock.Anything).Return(tc.response, nil)

			w := postJSON(t, newAIRouter(gen), "/ai/ocr", `{"image": "`+image+`", "document_type": "invoice"}`)
			assert.Equal(t, http.StatusBadGateway, w.Code)
			assert.Contains(t, w.Body.String(), "SCHEMA_VIOLATION")
		})
	}
}

func TestExtractDocument_InvalidBase64(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	w := postJSON(t, newAIRouter(gen), "/ai/ocr", `{"image": "!!not-base64!!", "document_type": "invoice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractDocument_InvalidDocumentType(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte{0x01})
	gen := new(mocks.MockTextGenerator)

	w := postJSON(t, newAIRouter(gen), "/ai/ocr", `{"image": "`+image+`", "document_type": "passport"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_DOCUMENT_TYPE")
}

func TestExtractDocument_MalformedModelOutput(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte{0x01})
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateMultimodal", mock.Anything, mock.Anything, mock.Anything).Return("sorry, no idea", nil)

	w := postJSON(t, newAIRouter(gen), "/ai/ocr", `{"image": "`+image+`", "document_type": "invoice"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "MALFORMED_MODEL_OUTPUT")
}

func TestFetchCompanyInfo_Success(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"company_name": "Acme", "industry": "Software"}`, nil)
	gen.On("ResolveProvider", mock.Anything, mock.Anything).
		Return(&domain.AIProvider{Name: "main"}, nil)

	w := postJSON(t, newAIRouter(gen), "/companies/fetch", `{"company_name": "Acme"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"company_name":"Acme"`)
	assert.Contains(t, w.Body.String(), `"ai_generated":true`)
}

func TestSuggest_Success(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"color": "#22c55e", "icon": "Receipt"}`, nil)

	w := postJSON(t, newAIRouter(gen), "/code-suggestions", `{"name": "Invoices"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "data": {"color": "#22c55e", "icon": "Receipt"}}`, w.Body.String())
}
