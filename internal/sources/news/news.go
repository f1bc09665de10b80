// Package news adapts the news endpoint of the content-source proxy.
package news

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/abelbrown/dashboard/internal/sources"
)

// Path is the proxy route serving news.
const Path = "/content-source/news"

// PageSize caps how many articles one default fetch returns.
const PageSize = 20

// Article is one news article as the proxy returns it.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
	Category string `json:"category,omitempty"`
}

// Response is the proxy's news payload.
type Response struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
}

// Adapter fetches news through the proxy.
type Adapter struct {
	client *sources.Client
}

// New creates an Adapter against the proxy at baseURL.
func New(baseURL string, timeout time.Duration, rps float64) *Adapter {
	return &Adapter{client: sources.NewClient("news", baseURL, timeout, rps)}
}

// FetchDefault returns top headlines, optionally scoped to a category.
// An empty category or "all" means no scope.
func (a *Adapter) FetchDefault(ctx context.Context, category string) ([]Article, error) {
	params := url.Values{"page": {strconv.Itoa(1)}}
	if category != "" && category != "all" {
		params.Set("category", category)
	}
	resp, err := a.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Articles) > PageSize {
		resp.Articles = resp.Articles[:PageSize]
	}
	return resp.Articles, nil
}

// Search returns articles matching query. Blank queries return nothing
// without a request.
func (a *Adapter) Search(ctx context.Context, query string) ([]Article, error) {
	if sources.BlankQuery(query) {
		return nil, nil
	}
	resp, err := a.get(ctx, url.Values{"query": {query}, "page": {"1"}})
	if err != nil {
		return nil, err
	}
	return resp.Articles, nil
}

func (a *Adapter) get(ctx context.Context, params url.Values) (*Response, error) {
	var resp Response
	if err := a.client.GetJSON(ctx, Path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
