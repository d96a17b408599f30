package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

// ProviderHandler handles AI provider config management. API keys are
// encrypted before they hit the store and are never echoed back.
type ProviderHandler struct {
	store  port.ProviderStore
	cipher port.SecretCipher
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(store port.ProviderStore, cipher port.SecretCipher) *ProviderHandler {
	return &ProviderHandler{store: store, cipher: cipher}
}

type providerRequest struct {
	Name           string  `json:"name" binding:"required"`
	Kind           string  `json:"kind" binding:"required"`
	Endpoint       string  `json:"endpoint"`
	APIVersion     string  `json:"api_version"`
	DeploymentName string  `json:"deployment_name"`
	OrganizationID string  `json:"organization_id"`
	ModelName      string  `json:"model_name" binding:"required"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
	APIKey         string  `json:"api_key"`
	IsActive       *bool   `json:"is_active"`
	IsDefault      bool    `json:"is_default"`
}

// providerView adds key presence to the serialized provider without exposing
// the key itself.
type providerView struct {
	*domain.AIProvider
	HasAPIKey bool `json:"has_api_key"`
}

func viewOf(p *domain.AIProvider) providerView {
	return providerView{AIProvider: p, HasAPIKey: p.APIKeyEncrypted != ""}
}

// Create handles POST /providers
func (h *ProviderHandler) Create(c *gin.Context) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	kind := domain.ProviderKind(req.Kind)
	if _, ok := domain.ValidProviderKinds[kind]; !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "unknown provider kind; allowed: openai, azure_openai, anthropic, google")
		return
	}

	provider := &domain.AIProvider{
		ID:             uuid.New(),
		Name:           req.Name,
		Kind:           kind,
		Endpoint:       req.Endpoint,
		APIVersion:     req.APIVersion,
		DeploymentName: req.DeploymentName,
		OrganizationID: req.OrganizationID,
		ModelName:      req.ModelName,
		MaxTokens:      req.MaxTokens,
		Temperature:    req.Temperature,
		IsActive:       true,
		IsDefault:      req.IsDefault,
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}
	if provider.MaxTokens <= 0 {
		provider.MaxTokens = 1000
	}
	if req.APIKey != "" {
		encrypted, err := h.cipher.Encrypt(req.APIKey)
		if err != nil {
			HandleError(c, err)
			return
		}
		provider.APIKeyEncrypted = encrypted
	}

	if err := h.store.Create(c.Request.Context(), provider); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, viewOf(provider))
}

// List handles GET /providers
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.store.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	views := make([]providerView, 0, len(providers))
	for i := range providers {
		views = append(views, viewOf(&providers[i]))
	}
	RespondOK(c, views)
}

// GetByID handles GET /providers/:id
func (h *ProviderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "id must be a valid uuid")
		return
	}
	provider, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, viewOf(provider))
}

// Update handles PUT /providers/:id. An empty api_key keeps the stored one.
func (h *ProviderHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "id must be a valid uuid")
		return
	}
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	kind := domain.ProviderKind(req.Kind)
	if _, ok := domain.ValidProviderKinds[kind]; !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "unknown provider kind; allowed: openai, azure_openai, anthropic, google")
		return
	}

	provider, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	provider.Name = req.Name
	provider.Kind = kind
	provider.Endpoint = req.Endpoint
	provider.APIVersion = req.APIVersion
	provider.DeploymentName = req.DeploymentName
	provider.OrganizationID = req.OrganizationID
	provider.ModelName = req.ModelName
	provider.Temperature = req.Temperature
	provider.IsDefault = req.IsDefault
	if req.MaxTokens > 0 {
		provider.MaxTokens = req.MaxTokens
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}
	if req.APIKey != "" {
		encrypted, err := h.cipher.Encrypt(req.APIKey)
		if err != nil {
			HandleError(c, err)
			return
		}
		provider.APIKeyEncrypted = encrypted
	}

	if err := h.store.Update(c.Request.Context(), provider); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, viewOf(provider))
}

// Delete handles DELETE /providers/:id
func (h *ProviderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "id must be a valid uuid")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// SetDefault handles POST /providers/:id/default
func (h *ProviderHandler) SetDefault(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "id must be a valid uuid")
		return
	}
	if err := h.store.SetDefault(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"default": true})
}
