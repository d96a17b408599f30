package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tts885/musubisuite/internal/domain"
	"github.com/tts885/musubisuite/internal/port"
)

// engineClient is one search backend bound to a resolved engine config.
type engineClient interface {
	search(ctx context.Context, query string, maxResults int) ([]port.SearchResult, error)
}

// newEngineClient builds the client for an engine kind. apiKey is the
// decrypted credential; engineID is only meaningful for Google CSE.
func newEngineClient(kind domain.EngineKind, apiKey, engineID string, httpClient *http.Client) (engineClient, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	switch kind {
	case domain.EngineBing:
		return &bingClient{apiKey: apiKey, client: httpClient}, nil
	case domain.EngineGoogle:
		return &googleClient{apiKey: apiKey, engineID: engineID, client: httpClient}, nil
	case domain.EngineSerper:
		return &serperClient{apiKey: apiKey, client: httpClient}, nil
	default:
		return nil, fmt.Errorf("engine kind %q: %w", kind, domain.ErrSearchEngineNotFound)
	}
}

type bingClient struct {
	apiKey  string
	baseURL string // test override
	client  *http.Client
}

func (c *bingClient) search(ctx context.Context, query string, maxResults int) ([]port.SearchResult, error) {
	base := c.baseURL
	if base == "" {
		base = "https://api.bing.microsoft.com"
	}
	endpoint := fmt.Sprintf("%s/v7.0/search?q=%s&count=%d&mkt=ja-JP",
		base, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bing: building request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	var out struct {
		WebPages struct {
			Value []struct {
				Name    string `json:"name"`
				URL     string `json:"url"`
				Snippet string `json:"snippet"`
			} `json:"value"`
		} `json:"webPages"`
	}
	if err := doJSON(c.client, req, "bing", &out); err != nil {
		return nil, err
	}
	results := make([]port.SearchResult, 0, len(out.WebPages.Value))
	for _, v := range out.WebPages.Value {
		results = append(results, port.SearchResult{Title: v.Name, URL: v.URL, Snippet: v.Snippet})
	}
	return results, nil
}

type googleClient struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

func (c *googleClient) search(ctx context.Context, query string, maxResults int) ([]port.SearchResult, error) {
	base := c.baseURL
	if base == "" {
		base = "https://www.googleapis.com"
	}
	// CSE caps num at 10.
	if maxResults > 10 {
		maxResults = 10
	}
	endpoint := fmt.Sprintf("%s/customsearch/v1?key=%s&cx=%s&q=%s&num=%d&lr=lang_ja",
		base, url.QueryEscape(c.apiKey), url.QueryEscape(c.engineID), url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("google search: building request: %w", err)
	}

	var out struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := doJSON(c.client, req, "google search", &out); err != nil {
		return nil, err
	}
	results := make([]port.SearchResult, 0, len(out.Items))
	for _, v := range out.Items {
		results = append(results, port.SearchResult{Title: v.Title, URL: v.Link, Snippet: v.Snippet})
	}
	return results, nil
}

type serperClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func (c *serperClient) search(ctx context.Context, query string, maxResults int) ([]port.SearchResult, error) {
	base := c.baseURL
	if base == "" {
		base = "https://google.serper.dev"
	}
	payload := `{"q":` + strconv.Quote(query) + `,"num":` + strconv.Itoa(maxResults) + `,"gl":"jp","hl":"ja"}`
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/search", strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("serper: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	var out struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := doJSON(c.client, req, "serper", &out); err != nil {
		return nil, err
	}
	results := make([]port.SearchResult, 0, len(out.Organic))
	for _, v := range out.Organic {
		results = append(results, port.SearchResult{Title: v.Title, URL: v.Link, Snippet: v.Snippet})
	}
	return results, nil
}

// doJSON runs the request and decodes a 2xx JSON body into out.
func doJSON(client *http.Client, req *http.Request, engine string, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", engine, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s: api returned status %d: %s", engine, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", engine, err)
	}
	return nil
}
