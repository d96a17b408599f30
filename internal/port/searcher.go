package port

import "context"

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearcher abstracts the web search backend used for company enrichment.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	SearchCompanyInfo(ctx context.Context, companyName string) ([]SearchResult, error)
}
