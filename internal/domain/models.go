package domain

import (
	"time"

	"github.com/google/uuid"
)

// AIProvider holds the connection settings for one LLM provider.
// Multiple providers can be registered; at most one active provider is the default.
type AIProvider struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	Kind            ProviderKind `db:"kind" json:"kind"`
	Endpoint        string       `db:"endpoint" json:"endpoint"`
	APIVersion      string       `db:"api_version" json:"api_version"`
	DeploymentName  string       `db:"deployment_name" json:"deployment_name"`
	OrganizationID  string       `db:"organization_id" json:"organization_id"`
	ModelName       string       `db:"model_name" json:"model_name"`
	MaxTokens       int          `db:"max_tokens" json:"max_tokens"`
	Temperature     float64      `db:"temperature" json:"temperature"`
	APIKeyEncrypted string       `db:"api_key_encrypted" json:"-"`
	IsActive        bool         `db:"is_active" json:"is_active"`
	IsDefault       bool         `db:"is_default" json:"is_default"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// SearchEngine holds the settings for one web search backend.
// Same single-default rule as AIProvider.
type SearchEngine struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Kind            EngineKind `db:"kind" json:"kind"`
	APIKeyEncrypted string     `db:"api_key_encrypted" json:"-"`
	SearchEngineID  string     `db:"search_engine_id" json:"search_engine_id"`
	MaxResults      int        `db:"max_results" json:"max_results"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	IsDefault       bool       `db:"is_default" json:"is_default"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// BoundingBox locates an extracted field on the source image, in pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ExtractedField is one labeled value found on a document. Confidence is a
// 0.0-1.0 score.
type ExtractedField struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Value       string       `json:"value"`
	Confidence  float64      `json:"confidence"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
}

// ExtractionResult is the structured output of document field extraction.
type ExtractionResult struct {
	Fields            []ExtractedField `json:"fields"`
	OverallConfidence float64          `json:"overallConfidence"`
}

// CompanyProfile is an AI-enriched company record. All values are
// model-generated and unverified; AIConfidenceScore is a 0-100 heuristic.
type CompanyProfile struct {
	CompanyName     string `json:"company_name"`
	LegalName       string `json:"legal_name"`
	Representative  string `json:"representative"`
	EstablishedDate string `json:"established_date"`
	Capital         *int64 `json:"capital"`
	EmployeeCount   *int   `json:"employee_count"`
	Industry        string `json:"industry"`
	Website         string `json:"website"`
	Description     string `json:"description"`
	PostalCode      string `json:"postal_code"`
	Prefecture      string `json:"prefecture"`
	City            string `json:"city"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Fax             string `json:"fax"`

	AIGenerated       bool      `json:"ai_generated"`
	AIConfidenceScore int       `json:"ai_confidence_score"`
	AIGeneratedAt     time.Time `json:"ai_generated_at"`
	AIProvider        string    `json:"ai_provider"`
	WebSearchUsed     bool      `json:"web_search_used"`
}

// FieldChange records one differing field between two company profiles.
type FieldChange struct {
	Field      string      `json:"field"`
	OldValue   interface{} `json:"old_value"`
	NewValue   interface{} `json:"new_value"`
	Confidence int         `json:"confidence"`
}
