package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrProviderNotFound     = errors.New("ai provider not found")
	ErrSearchEngineNotFound = errors.New("search engine not found")
	ErrCredentialMissing    = errors.New("api key is not configured")
	ErrUnsupportedModality  = errors.New("provider does not support image input")
	ErrProviderCallFailed   = errors.New("provider api call failed")
	ErrTruncatedOutput      = errors.New("model output truncated at token limit")
	ErrMalformedModelOutput = errors.New("model response is not valid json")
	ErrSchemaViolation      = errors.New("model response is missing required keys")
	ErrInvalidDocumentType  = errors.New("invalid document type")
	ErrDuplicateName        = errors.New("a config with this name already exists")
)
