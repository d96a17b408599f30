package search

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
	"github.com/tts885/musubisuite/mocks"
)

// fakeEngine records queries and replays canned results.
type fakeEngine struct {
	results map[string][]port.SearchResult
	err     error
	queries []string
}

func (f *fakeEngine) search(ctx context.Context, query string, maxResults int) ([]port.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func newTestSearcher(engine *domain.SearchEngine, fake engineClient) *Searcher {
	store := new(mocks.MockSearchStore)
	store.On("GetActiveDefault", mock.Anything).Return(engine, nil)

	s := NewSearcher(store, mocks.PassthroughCipher{})
	s.newClient = func(kind domain.EngineKind, apiKey, engineID string, httpClient *http.Client) (engineClient, error) {
		return fake, nil
	}
	return s
}

func testEngine(maxResults int) *domain.SearchEngine {
	return &domain.SearchEngine{
		Name:            "default",
		Kind:            domain.EngineSerper,
		APIKeyEncrypted: "serper-key",
		MaxResults:      maxResults,
		IsActive:        true,
		IsDefault:       true,
	}
}

func TestSearch_DelegatesToEngine(t *testing.T) {
	fake := &fakeEngine{results: map[string][]port.SearchResult{
		"acme": {{Title: "Acme", URL: "https://acme.example.jp"}},
	}}
	s := newTestSearcher(testEngine(5), fake)

	results, err := s.Search(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme", results[0].Title)
}

func TestSearchCompanyInfo_CombinesAndDeduplicates(t *testing.T) {
	fake := &fakeEngine{results: map[string][]port.SearchResult{
		"Acme 会社概要": {
			{Title: "Overview", URL: "https://acme.example.jp/about"},
			{Title: "Top", URL: "https://acme.example.jp/"},
		},
		"Acme 企業情報 資本金 設立": {
			// Duplicate URL must be dropped.
			{Title: "Overview again", URL: "https://acme.example.jp/about"},
			{Title: "Corporate DB", URL: "https://corp.example.com/acme"},
		},
	}}
	s := newTestSearcher(testEngine(5), fake)

	results, err := s.SearchCompanyInfo(context.Background(), "Acme")
	require.NoError(t, err)
	require.Len(t, results, 3)

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	assert.ElementsMatch(t, urls, []string{
		"https://acme.example.jp/about",
		"https://acme.example.jp/",
		"https://corp.example.com/acme",
	})
}

func TestSearchCompanyInfo_CapsAtMaxResults(t *testing.T) {
	fake := &fakeEngine{results: map[string][]port.SearchResult{
		"Acme 会社概要": {
			{URL: "https://a.example/1"},
			{URL: "https://a.example/2"},
			{URL: "https://a.example/3"},
		},
	}}
	s := newTestSearcher(testEngine(2), fake)

	results, err := s.SearchCompanyInfo(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	// Hitting the cap short-circuits the remaining query shapes.
	assert.Equal(t, []string{"Acme 会社概要"}, fake.queries)
}

func TestSearchCompanyInfo_QueryFailuresAreSkipped(t *testing.T) {
	fake := &fakeEngine{err: errors.New("quota exceeded")}
	s := newTestSearcher(testEngine(5), fake)

	results, err := s.SearchCompanyInfo(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Len(t, fake.queries, len(companyQueries))
}

func TestSearch_StoreErrorPropagates(t *testing.T) {
	store := new(mocks.MockSearchStore)
	store.On("GetActiveDefault", mock.Anything).Return(nil, domain.ErrSearchEngineNotFound)

	s := NewSearcher(store, mocks.PassthroughCipher{})
	_, err := s.Search(context.Background(), "acme")
	assert.ErrorIs(t, err, domain.ErrSearchEngineNotFound)
}

func TestNewEngineClient_UnknownKind(t *testing.T) {
	_, err := newEngineClient(domain.EngineKind("altavista"), "key", "", nil)
	assert.ErrorIs(t, err, domain.ErrSearchEngineNotFound)
}
