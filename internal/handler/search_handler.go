package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

// SearchEngineHandler handles search engine config management.
type SearchEngineHandler struct {
	store  port.SearchStore
	cipher port.SecretCipher
}

// NewSearchEngineHandler creates a new SearchEngineHandler.
func NewSearchEngineHandler(store port.SearchStore, cipher port.SecretCipher) *SearchEngineHandler {
	return &SearchEngineHandler{store: store, cipher: cipher}
}

type engineRequest struct {
	Name           string `json:"name" binding:"required"`
	Kind           string `json:"kind" binding:"required"`
	APIKey         string `json:"api_key"`
	SearchEngineID string `json:"search_engine_id"`
	MaxResults     int    `json:"max_results"`
	IsActive       *bool  `json:"is_active"`
	IsDefault      bool   `json:"is_default"`
}

type engineView struct {
	*domain.SearchEngine
	HasAPIKey bool `json:"has_api_key"`
}

func engineViewOf(e *domain.SearchEngine) engineView {
	return engineView{SearchEngine: e, HasAPIKey: e.APIKeyEncrypted != ""}
}

// Create handles POST /search-engines
func (h *SearchEngineHandler) Create(c *gin.Context) {
	var req engineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	kind := domain.EngineKind(req.Kind)
	if _, ok := domain.ValidEngineKinds[kind]; !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "unknown engine kind; allowed: bing, google, serper")
		return
	}

	engine := &domain.SearchEngine{
		ID:             uuid.New(),
		Name:           req.Name,
		Kind:           kind,
		SearchEngineID: req.SearchEngineID,
		MaxResults:     req.MaxResults,
		IsActive:       true,
		IsDefault:      req.IsDefault,
	}
	if req.IsActive != nil {
		engine.IsActive = *req.IsActive
	}
	if engine.MaxResults <= 0 {
		engine.MaxResults = 5
	}
	if req.APIKey != "" {
		encrypted, err := h.cipher.Encrypt(req.APIKey)
		if err != nil {
			HandleError(c, err)
			return
		}
		engine.APIKeyEncrypted = encrypted
	}

	if err := h.store.Create(c.Request.Context(), engine); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, engineViewOf(engine))
}

// List handles GET /search-engines
func (h *SearchEngineHandler) List(c *gin.Context) {
	engines, err := h.store.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	views := make([]engineView, 0, len(engines))
	for i := range engines {
		views = append(views, engineViewOf(&engines[i]))
	}
	RespondOK(c, views)
}

// GetByID handles GET /search-engines/:id
func (h *SearchEngineHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "id must be a valid uuid")
		return
	}
	engine, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, engineViewOf(engine))
}

// Update handles PUT /search-engines/:id. An empty api_key keeps the stored one.
func (h *SearchEngineHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "id must be a valid uuid")
		return
	}
	var req engineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	kind := domain.EngineKind(req.Kind)
	if _, ok := domain.ValidEngineKinds[kind]; !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "unknown engine kind; allowed: bing, google, serper")
		return
	}

	engine, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	engine.Name = req.Name
	engine.Kind = kind
	engine.SearchEngineID = req.SearchEngineID
	engine.IsDefault = req.IsDefault
	if req.MaxResults > 0 {
		engine.MaxResults = req.MaxResults
	}
	if req.IsActive != nil {
		engine.IsActive = *req.IsActive
	}
	if req.APIKey != "" {
		encrypted, err := h.cipher.Encrypt(req.APIKey)
		if err != nil {
			HandleError(c, err)
			return
		}
		engine.APIKeyEncrypted = encrypted
	}

	if err := h.store.Update(c.Request.Context(), engine); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, engineViewOf(engine))
}

// Delete handles DELETE /search-engines/:id
func (h *SearchEngineHandler) Delete(c *gin.Context) {
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

// SetDefault handles POST /search-engines/:id/default
func (h *SearchEngineHandler) SetDefault(c *gin.Context) {
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
