// Package enrich generates company profiles from an LLM, optionally grounded
// in web search results, and scores how complete the output is.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/parser"
	"github.com/tts885/musubisuite/internal/port"
)

const (
	fetchTemperature = 0.3
	fetchMaxTokens   = 1500
)

// Service runs company info fetch and refresh.
type Service struct {
	gen      port.TextGenerator
	searcher port.WebSearcher // nil disables search grounding
}

func NewService(gen port.TextGenerator, searcher port.WebSearcher) *Service {
	return &Service{gen: gen, searcher: searcher}
}

// wireProfile tolerates the type drift models produce: numbers may arrive
// quoted or with units attached.
type wireProfile struct {
	CompanyName     string          `json:"company_name"`
	LegalName       string          `json:"legal_name"`
	Representative  string          `json:"representative"`
	EstablishedDate string          `json:"established_date"`
	Capital         json.RawMessage `json:"capital"`
	EmployeeCount   json.RawMessage `json:"employee_count"`
	Industry        string          `json:"industry"`
	Website         string          `json:"website"`
	Description     string          `json:"description"`
	PostalCode      string          `json:"postal_code"`
	Prefecture      string          `json:"prefecture"`
	City            string          `json:"city"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	Fax             string          `json:"fax"`
}

// FetchCompanyInfo builds a profile for the named company. When useWebSearch
// is set and a searcher is wired, search hits are fed to the model as
// grounding context; search failures degrade to an ungrounded fetch.
func (s *Service) FetchCompanyInfo(ctx context.Context, ref port.ProviderRef, companyName string, useWebSearch bool) (*domain.CompanyProfile, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, fmt.Errorf("company name is required")
	}

	searchContext := ""
	searchUsed := false
	if useWebSearch && s.searcher != nil {
		results, err := s.searcher.SearchCompanyInfo(ctx, companyName)
		if err != nil {
			log.Printf("Service.FetchCompanyInfo: web search failed, continuing without: %v", err)
		} else if len(results) > 0 {
			searchContext = formatSearchContext(results)
			searchUsed = true
		}
	}

	temp := fetchTemperature
	raw, err := s.gen.Generate(ctx, ref, port.GenerateRequest{
		Prompt:      buildCompanyPrompt(companyName, searchContext),
		MaxTokens:   fetchMaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	profile, err := parseProfile(raw)
	if err != nil {
		return nil, err
	}

	profile.Capital = NormalizeCapital(profile.Capital)
	profile.AIGenerated = true
	profile.AIConfidenceScore = ConfidenceScore(profile)
	profile.AIGeneratedAt = time.Now().UTC()
	profile.WebSearchUsed = searchUsed
	if p, err := s.gen.ResolveProvider(ctx, ref); err == nil {
		profile.AIProvider = p.Name
	}
	return profile, nil
}

// RefreshCompanyInfo regenerates the profile and reports what changed
// against the current one.
func (s *Service) RefreshCompanyInfo(ctx context.Context, ref port.ProviderRef, current *domain.CompanyProfile, useWebSearch bool) (*domain.CompanyProfile, []domain.FieldChange, error) {
	name := current.CompanyName
	if name == "" {
		name = current.LegalName
	}
	next, err := s.FetchCompanyInfo(ctx, ref, name, useWebSearch)
	if err != nil {
		return nil, nil, err
	}
	return next, Diff(current, next), nil
}

func parseProfile(raw string) (*domain.CompanyProfile, error) {
	payload := parser.ExtractJSONPayload(raw)

	var wire wireProfile
	if err := parser.UnmarshalLenient(payload, &wire); err != nil {
		return nil, fmt.Errorf("profile response is not parseable JSON: %w", domain.ErrMalformedModelOutput)
	}

	profile := &domain.CompanyProfile{
		CompanyName:     cleanString(wire.CompanyName),
		LegalName:       cleanString(wire.LegalName),
		Representative:  cleanString(wire.Representative),
		EstablishedDate: cleanString(wire.EstablishedDate),
		Industry:        cleanString(wire.Industry),
		Website:         cleanString(wire.Website),
		Description:     cleanString(wire.Description),
		PostalCode:      cleanString(wire.PostalCode),
		Prefecture:      cleanString(wire.Prefecture),
		City:            cleanString(wire.City),
		Address:         cleanString(wire.Address),
		Phone:           cleanString(wire.Phone),
		Fax:             cleanString(wire.Fax),
	}
	if n, ok := parseAmount(string(wire.Capital)); ok {
		profile.Capital = &n
	}
	if n, ok := parseAmount(string(wire.EmployeeCount)); ok {
		count := int(n)
		profile.EmployeeCount = &count
	}
	return profile, nil
}

// cleanString trims whitespace and maps the model's various spellings of
// "I don't know" to empty.
func cleanString(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "null", "none", "n/a", "unknown", "不明":
		return ""
	}
	return v
}
