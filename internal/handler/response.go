package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tts885/musubisuite/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrProviderNotFound):
		return http.StatusNotFound, "PROVIDER_NOT_FOUND", "ai provider not found"
	case errors.Is(err, domain.ErrSearchEngineNotFound):
		return http.StatusNotFound, "SEARCH_ENGINE_NOT_FOUND", "search engine not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrCredentialMissing):
		return http.StatusUnprocessableEntity, "CREDENTIAL_MISSING", "provider has no usable api key configured"
	case errors.Is(err, domain.ErrUnsupportedModality):
		return http.StatusBadRequest, "UNSUPPORTED_MODALITY", "provider does not support this input type"
	case errors.Is(err, domain.ErrInvalidDocumentType):
		return http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "invalid document type; allowed: invoice, receipt, contract, form, other"
	case errors.Is(err, domain.ErrTruncatedOutput):
		return http.StatusBadGateway, "TRUNCATED_OUTPUT", "model response was cut off at the token limit"
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return http.StatusBadGateway, "MALFORMED_MODEL_OUTPUT", "model response could not be parsed"
	case errors.Is(err, domain.ErrSchemaViolation):
		return http.StatusBadGateway, "SCHEMA_VIOLATION", "model response did not match the expected structure"
	case errors.Is(err, domain.ErrProviderCallFailed):
		return http.StatusBadGateway, "PROVIDER_CALL_FAILED", "upstream ai provider call failed"
	case errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict, "DUPLICATE_NAME", "a config with this name already exists"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
