// Package movie adapts the movie endpoint of the content-source proxy.
package movie

import (
	"context"
	"net/url"
	"time"

	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/sources"
)

// Path is the proxy route serving movies.
const Path = "/content-source/movies"

// ImageBase prefixes TMDB poster paths.
const ImageBase = "https://image.tmdb.org/t/p/w500"

// List types understood by the proxy.
const (
	ListPopular  = "popular"
	ListTrending = "trending"
	ListTopRated = "top_rated"
	ListUpcoming = "upcoming"
)

// Movie is one TMDB movie record.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int   `json:"genre_ids"`
	Popularity   float64 `json:"popularity"`
}

// Response is the proxy's movie payload.
type Response struct {
	Results      []Movie `json:"results"`
	TotalResults int     `json:"total_results"`
	Page         int     `json:"page"`
}

// PosterURL maps a poster path fragment to a full image URL, or the local
// placeholder when the path is empty.
func PosterURL(path string) string {
	if path == "" {
		return model.PlaceholderMovie
	}
	return ImageBase + path
}

// Adapter fetches movies through the proxy.
type Adapter struct {
	client *sources.Client
}

// New creates an Adapter against the proxy at baseURL.
func New(baseURL string, timeout time.Duration, rps float64) *Adapter {
	return &Adapter{client: sources.NewClient("movie", baseURL, timeout, rps)}
}

// FetchDefault returns popular movies at the provider's page size. Movies
// carry no category scope; the argument is accepted for symmetry.
func (a *Adapter) FetchDefault(ctx context.Context, _ string) ([]Movie, error) {
	return a.list(ctx, url.Values{"type": {ListPopular}})
}

// FetchTrending returns today's trending movies.
func (a *Adapter) FetchTrending(ctx context.Context) ([]Movie, error) {
	return a.list(ctx, url.Values{"type": {ListTrending}})
}

// Search returns movies matching query. Blank queries return nothing
// without a request.
func (a *Adapter) Search(ctx context.Context, query string) ([]Movie, error) {
	if sources.BlankQuery(query) {
		return nil, nil
	}
	return a.list(ctx, url.Values{"query": {query}})
}

func (a *Adapter) list(ctx context.Context, params url.Values) ([]Movie, error) {
	var resp Response
	if err := a.client.GetJSON(ctx, Path, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
