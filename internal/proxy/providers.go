package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/sources"
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
)

// NewsQuery is a parsed /content-source/news request.
type NewsQuery struct {
	Category string
	Query    string
	Page     int
}

// MovieQuery is a parsed /content-source/movies request.
type MovieQuery struct {
	Type  string
	Query string
	Page  int
}

// NewsProvider is a real news upstream.
type NewsProvider interface {
	Name() string
	News(ctx context.Context, q NewsQuery) (*news.Response, error)
}

// MovieProvider is a real movie upstream.
type MovieProvider interface {
	Name() string
	Movies(ctx context.Context, q MovieQuery) (*movie.Response, error)
}

// NewsAPI queries newsapi.org.
type NewsAPI struct {
	client *sources.Client
}

// NewNewsAPI creates a NewsAPI provider. The key travels in a header so it
// never appears in URLs or logs.
func NewNewsAPI(baseURL, apiKey string, timeout time.Duration) *NewsAPI {
	c := sources.NewClient("newsapi", baseURL, timeout, 0).SetHeader("X-Api-Key", apiKey)
	return &NewsAPI{client: c}
}

func (n *NewsAPI) Name() string { return "newsapi" }

// News maps a query onto top-headlines, or onto everything when a search
// term is present.
func (n *NewsAPI) News(ctx context.Context, q NewsQuery) (*news.Response, error) {
	params := url.Values{
		"pageSize": {strconv.Itoa(news.PageSize)},
		"page":     {strconv.Itoa(q.Page)},
	}
	path := "/top-headlines"
	if q.Query != "" {
		path = "/everything"
		params.Set("q", q.Query)
		params.Set("sortBy", "publishedAt")
	} else {
		params.Set("country", "us")
		if q.Category != "" && q.Category != model.CategoryAll {
			params.Set("category", q.Category)
		}
	}

	var resp news.Response
	if err := n.client.GetJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	// Headlines fetched for a category belong to it; NewsAPI does not echo it.
	if q.Query == "" && q.Category != "" && q.Category != model.CategoryAll {
		for i := range resp.Articles {
			if resp.Articles[i].Category == "" {
				resp.Articles[i].Category = q.Category
			}
		}
	}
	return &resp, nil
}

// RSSNews serves news from a single RSS or Atom feed. Category is recorded
// on the articles but does not filter; the feed decides its own topic.
type RSSNews struct {
	url    string
	client *http.Client
}

// NewRSSNews creates an RSS-backed news provider.
func NewRSSNews(feedURL string, timeout time.Duration) *RSSNews {
	return &RSSNews{url: feedURL, client: &http.Client{Timeout: timeout}}
}

func (r *RSSNews) Name() string { return "rss" }

// News fetches and parses the feed, filters by query and pages the result.
func (r *RSSNews) News(ctx context.Context, q NewsQuery) (*news.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Dashboard/1.0 (+https://github.com/abelbrown/dashboard)")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &sources.UpstreamError{Source: r.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &sources.UpstreamError{Source: r.Name(), Status: resp.StatusCode, Err: fmt.Errorf("HTTP error: %s", resp.Status)}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &sources.UpstreamError{Source: r.Name(), Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	var articles []news.Article
	for _, item := range feed.Items {
		a := convertFeedItem(item, feed.Title, q.Category)
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			continue
		}
		articles = append(articles, a)
	}

	total := len(articles)
	start := min((q.Page-1)*news.PageSize, total)
	end := min(start+news.PageSize, total)
	return &news.Response{Articles: articles[start:end], TotalResults: total}, nil
}

// convertFeedItem converts a gofeed.Item to a news.Article.
func convertFeedItem(item *gofeed.Item, feedTitle, category string) news.Article {
	a := news.Article{
		Title:       item.Title,
		Description: item.Description,
		URL:         item.Link,
		Category:    category,
	}
	a.Source.Name = feedTitle

	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		a.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		a.PublishedAt = item.Published
	}

	if item.Image != nil {
		a.URLToImage = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				a.URLToImage = enc.URL
				break
			}
		}
	}
	return a
}

// TMDB queries The Movie Database v3 API.
type TMDB struct {
	client *sources.Client
	apiKey string
}

// NewTMDB creates a TMDB provider.
func NewTMDB(baseURL, apiKey string, timeout time.Duration) *TMDB {
	return &TMDB{client: sources.NewClient("tmdb", baseURL, timeout, 0), apiKey: apiKey}
}

func (t *TMDB) Name() string { return "tmdb" }

// Movies maps a query onto search/movie or one of the list endpoints.
// Unknown list types fall back to popular.
func (t *TMDB) Movies(ctx context.Context, q MovieQuery) (*movie.Response, error) {
	params := url.Values{
		"api_key": {t.apiKey},
		"page":    {strconv.Itoa(q.Page)},
	}

	var path string
	switch {
	case q.Query != "":
		path = "/search/movie"
		params.Set("query", q.Query)
	case q.Type == movie.ListTrending:
		path = "/trending/movie/day"
	case q.Type == movie.ListTopRated:
		path = "/movie/top_rated"
	case q.Type == movie.ListUpcoming:
		path = "/movie/upcoming"
	default:
		path = "/movie/popular"
	}

	var resp movie.Response
	if err := t.client.GetJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
