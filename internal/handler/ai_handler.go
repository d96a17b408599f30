package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/enrich"
	"github.com/tts885/musubisuite/internal/extract"
	"github.com/tts885/musubisuite/internal/port"
	"github.com/tts885/musubisuite/internal/suggest"
)

// AIHandler handles generation, OCR extraction, company enrichment and
// suggestion endpoints.
type AIHandler struct {
	gen     port.TextGenerator
	extract *extract.Processor
	enrich  *enrich.Service
	suggest *suggest.Service
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(gen port.TextGenerator, ex *extract.Processor, en *enrich.Service, sg *suggest.Service) *AIHandler {
	return &AIHandler{gen: gen, extract: ex, enrich: en, suggest: sg}
}

// providerSelector is the common provider override accepted by AI endpoints.
// Both fields empty means the active default provider.
type providerSelector struct {
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

func (s providerSelector) ref(c *gin.Context) (port.ProviderRef, bool) {
	ref := port.ProviderRef{Name: s.ProviderName}
	if s.ProviderID != "" {
		id, err := uuid.Parse(s.ProviderID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "provider_id must be a valid uuid")
			return port.ProviderRef{}, false
		}
		ref.ID = &id
	}
	return ref, true
}

type generateRequest struct {
	providerSelector
	Prompt      string   `json:"prompt" binding:"required"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func (r generateRequest) toPort() port.GenerateRequest {
	return port.GenerateRequest{
		Prompt:      r.Prompt,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
	}
}

// Generate handles POST /ai/generate
func (h *AIHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	text, err := h.gen.Generate(c.Request.Context(), ref, req.toPort())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"text": text})
}

// GenerateStream handles POST /ai/generate/stream
func (h *AIHandler) GenerateStream(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	stream, err := h.gen.GenerateStream(c.Request.Context(), ref, req.toPort())
	if err != nil {
		// Stream never opened, a regular error response is still possible.
		HandleError(c, err)
		return
	}
	pumpStream(c, stream)
}

type ocrRequest struct {
	providerSelector
	Image        string `json:"image" binding:"required"`
	MIMEType     string `json:"mime_type"`
	DocumentType string `json:"document_type" binding:"required"`
}

// ExtractDocument handles POST /ai/ocr
func (h *AIHandler) ExtractDocument(c *gin.Context) {
	var req ocrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}

	image, mime := stripDataURL(req.Image)
	if mime == "" {
		mime = req.MIMEType
	}
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "image must be base64 encoded")
		return
	}

	result, err := h.extract.ExtractDocumentFields(c.Request.Context(), ref, data, mime, domain.DocumentType(req.DocumentType))
	if err != nil {
		HandleError(c, err)
		return
	}
	if !extract.Validate(result) {
		HandleError(c, fmt.Errorf("extraction result failed validation: %w", domain.ErrSchemaViolation))
		return
	}
	RespondOK(c, result)
}

type fetchCompanyRequest struct {
	providerSelector
	CompanyName  string `json:"company_name" binding:"required"`
	UseWebSearch bool   `json:"use_web_search"`
}

// FetchCompanyInfo handles POST /companies/fetch
func (h *AIHandler) FetchCompanyInfo(c *gin.Context) {
	var req fetchCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	profile, err := h.enrich.FetchCompanyInfo(c.Request.Context(), ref, req.CompanyName, req.UseWebSearch)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, profile)
}

type refreshCompanyRequest struct {
	providerSelector
	Current      domain.CompanyProfile `json:"current" binding:"required"`
	UseWebSearch bool                  `json:"use_web_search"`
}

// RefreshCompanyInfo handles POST /companies/refresh
func (h *AIHandler) RefreshCompanyInfo(c *gin.Context) {
	var req refreshCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	profile, changes, err := h.enrich.RefreshCompanyInfo(c.Request.Context(), ref, &req.Current, req.UseWebSearch)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile, "changes": changes})
}

type suggestRequest struct {
	providerSelector
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Suggest handles POST /code-suggestions
func (h *AIHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	suggestion, err := h.suggest.Suggest(c.Request.Context(), ref, req.Name, req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, suggestion)
}

// SuggestStream handles POST /code-suggestions/stream
func (h *AIHandler) SuggestStream(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	stream, err := h.suggest.SuggestStream(c.Request.Context(), ref, req.Name, req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	pumpStream(c, stream)
}

// stripDataURL splits a data URL into its base64 payload and MIME type.
// Plain base64 input passes through with an empty MIME.
func stripDataURL(image string) (payload, mime string) {
	if !strings.HasPrefix(image, "data:") {
		return image, ""
	}
	rest := strings.TrimPrefix(image, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return image, ""
	}
	return rest[semi+len(";base64,"):], rest[:semi]
}
