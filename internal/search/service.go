// Package search implements web search over configurable engine backends.
// Engine configs live in the store; the active default is resolved per call
// so admin changes take effect without a restart.
package search

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

const defaultMaxResults = 5

// Searcher resolves the active search engine config and queries its backend.
type Searcher struct {
	store  port.SearchStore
	cipher port.SecretCipher

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	// newClient builds the backend client; replaceable in tests.
	newClient func(kind domain.EngineKind, apiKey, engineID string, httpClient *http.Client) (engineClient, error)
}

func NewSearcher(store port.SearchStore, cipher port.SecretCipher) *Searcher {
	return &Searcher{store: store, cipher: cipher, newClient: newEngineClient}
}

// Search runs one query against the active default engine.
func (s *Searcher) Search(ctx context.Context, query string) ([]port.SearchResult, error) {
	client, maxResults, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return client.search(ctx, query, maxResults)
}

// Company search queries, most specific first. 会社概要 pages carry the
// structured facts the enrichment prompt wants.
var companyQueries = []string{
	"%s 会社概要",
	"%s 企業情報 資本金 設立",
	"%s 本社 所在地",
}

// SearchCompanyInfo gathers hits across several query shapes, deduplicates by
// URL and caps the combined list at the engine's max results. Individual
// query failures are logged and skipped.
func (s *Searcher) SearchCompanyInfo(ctx context.Context, companyName string) ([]port.SearchResult, error) {
	client, maxResults, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var combined []port.SearchResult
	for _, shape := range companyQueries {
		if len(combined) >= maxResults {
			break
		}
		query := fmt.Sprintf(shape, companyName)
		results, err := client.search(ctx, query, maxResults)
		if err != nil {
			log.Printf("Searcher.SearchCompanyInfo: query %q failed: %v", query, err)
			continue
		}
		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			combined = append(combined, r)
			if len(combined) >= maxResults {
				break
			}
		}
	}
	return combined, nil
}

// resolve loads the active default engine and builds its client.
func (s *Searcher) resolve(ctx context.Context) (engineClient, int, error) {
	engine, err := s.store.GetActiveDefault(ctx)
	if err != nil {
		return nil, 0, err
	}
	apiKey, err := s.cipher.Decrypt(engine.APIKeyEncrypted)
	if err != nil {
		return nil, 0, fmt.Errorf("search engine %q credential: %w", engine.Name, err)
	}
	client, err := s.newClient(engine.Kind, apiKey, engine.SearchEngineID, s.HTTPClient)
	if err != nil {
		return nil, 0, err
	}
	maxResults := engine.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return client, maxResults, nil
}
