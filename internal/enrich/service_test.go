package enrich_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/enrich"
	"github.com/tts885/musubisuite/internal/port"
	"github.com/tts885/musubisuite/mocks"
)

const profileJSON = `{
  "company_name": "Acme",
  "legal_name": "株式会社Acme",
  "representative": "山田太郎",
  "established_date": "2001-04-01",
  "capital": 1000,
  "employee_count": "約120名",
  "industry": "Software",
  "website": "https://acme.example.jp",
  "description": "Business software vendor.",
  "postal_code": "100-0001",
  "prefecture": "東京都",
  "city": "千代田区",
  "address": "1-1-1",
  "phone": "03-1234-5678",
  "fax": null
}`

func TestFetchCompanyInfo_ParsesAndNormalizes(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(profileJSON, nil)
	gen.On("ResolveProvider", mock.Anything, mock.Anything).Return(&domain.AIProvider{Name: "main"}, nil)

	svc := enrich.NewService(gen, nil)
	profile, err := svc.FetchCompanyInfo(context.Background(), port.ProviderRef{}, "Acme", false)
	require.NoError(t, err)

	assert.Equal(t, "Acme", profile.CompanyName)
	assert.Equal(t, "株式会社Acme", profile.LegalName)
	// 1000 is read as man-yen and normalized to yen.
	require.NotNil(t, profile.Capital)
	assert.Equal(t, int64(10_000_000), *profile.Capital)
	require.NotNil(t, profile.EmployeeCount)
	assert.Equal(t, 120, *profile.EmployeeCount)
	assert.Empty(t, profile.Fax)

	assert.True(t, profile.AIGenerated)
	assert.Equal(t, "main", profile.AIProvider)
	assert.False(t, profile.WebSearchUsed)
	assert.False(t, profile.AIGeneratedAt.IsZero())
	assert.Greater(t, profile.AIConfidenceScore, 0)
}

func TestFetchCompanyInfo_UsesSearchContext(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(req port.GenerateRequest) bool {
		// Search hits must land in the prompt.
		return strings.Contains(req.Prompt, "acme.example.jp") && strings.Contains(req.Prompt, "Acme Inc")
	})).Return(profileJSON, nil)
	gen.On("ResolveProvider", mock.Anything, mock.Anything).Return(&domain.AIProvider{Name: "main"}, nil)

	searcher := new(mocks.MockWebSearcher)
	searcher.On("SearchCompanyInfo", mock.Anything, "Acme").Return([]port.SearchResult{
		{Title: "Acme Inc", URL: "https://acme.example.jp/about", Snippet: "company overview"},
	}, nil)

	svc := enrich.NewService(gen, searcher)
	profile, err := svc.FetchCompanyInfo(context.Background(), port.ProviderRef{}, "Acme", true)
	require.NoError(t, err)
	assert.True(t, profile.WebSearchUsed)
	searcher.AssertExpectations(t)
}

func TestFetchCompanyInfo_SearchFailureDegrades(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(profileJSON, nil)
	gen.On("ResolveProvider", mock.Anything, mock.Anything).Return(&domain.AIProvider{Name: "main"}, nil)

	searcher := new(mocks.MockWebSearcher)
	searcher.On("SearchCompanyInfo", mock.Anything, "Acme").Return(nil, errors.New("engine down"))

	svc := enrich.NewService(gen, searcher)
	profile, err := svc.FetchCompanyInfo(context.Background(), port.ProviderRef{}, "Acme", true)
	require.NoError(t, err)
	assert.False(t, profile.WebSearchUsed)
}

func TestFetchCompanyInfo_MalformedResponse(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("I do not know this company.", nil)

	svc := enrich.NewService(gen, nil)
	_, err := svc.FetchCompanyInfo(context.Background(), port.ProviderRef{}, "Acme", false)
	assert.ErrorIs(t, err, domain.ErrMalformedModelOutput)
}

func TestFetchCompanyInfo_EmptyNameRejected(t *testing.T) {
	svc := enrich.NewService(new(mocks.MockTextGenerator), nil)
	_, err := svc.FetchCompanyInfo(context.Background(), port.ProviderRef{}, "   ", false)
	assert.Error(t, err)
}

func TestRefreshCompanyInfo_ReportsChanges(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(profileJSON, nil)
	gen.On("ResolveProvider", mock.Anything, mock.Anything).Return(&domain.AIProvider{Name: "main"}, nil)

	current := &domain.CompanyProfile{
		CompanyName: "Acme",
		Industry:    "Consulting",
	}

	svc := enrich.NewService(gen, nil)
	next, changes, err := svc.RefreshCompanyInfo(context.Background(), port.ProviderRef{}, current, false)
	require.NoError(t, err)
	require.NotNil(t, next)

	fields := make([]string, 0, len(changes))
	for _, ch := range changes {
		fields = append(fields, ch.Field)
	}
	assert.Contains(t, fields, "industry")
	assert.NotContains(t, fields, "company_name")
}
