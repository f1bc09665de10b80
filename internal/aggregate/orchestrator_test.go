package aggregate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/sources"
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
	"github.com/abelbrown/dashboard/internal/sources/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = &sources.UpstreamError{Source: "test", Status: 503, Err: errors.New("down")}

type fakeNews struct {
	articles   []news.Article
	err        error
	calls      atomic.Int32
	categories chan string
	delay      time.Duration
}

func (f *fakeNews) FetchDefault(ctx context.Context, category string) ([]news.Article, error) {
	f.calls.Add(1)
	if f.categories != nil {
		f.categories <- category
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.articles, f.err
}

func (f *fakeNews) Search(ctx context.Context, query string) ([]news.Article, error) {
	f.calls.Add(1)
	return f.articles, f.err
}

type fakeMovies struct {
	movies   []movie.Movie
	trending []movie.Movie
	err      error
	calls    atomic.Int32
	panics   bool
}

func (f *fakeMovies) FetchDefault(ctx context.Context, _ string) ([]movie.Movie, error) {
	f.calls.Add(1)
	if f.panics {
		panic("boom")
	}
	return f.movies, f.err
}

func (f *fakeMovies) FetchTrending(ctx context.Context) ([]movie.Movie, error) {
	f.calls.Add(1)
	return f.trending, f.err
}

func (f *fakeMovies) Search(ctx context.Context, query string) ([]movie.Movie, error) {
	f.calls.Add(1)
	return f.movies, f.err
}

type fakeSocial struct {
	posts []social.Post
	err   error
	calls atomic.Int32
}

func (f *fakeSocial) FetchDefault(ctx context.Context, _ string) ([]social.Post, error) {
	f.calls.Add(1)
	return f.posts, f.err
}

func (f *fakeSocial) Search(ctx context.Context, query string) ([]social.Post, error) {
	f.calls.Add(1)
	return f.posts, f.err
}

func makeArticles(n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i].Title = fmt.Sprintf("News %d", i)
		out[i].PublishedAt = "2024-01-15T10:00:00Z"
		out[i].Source.Name = "Wire"
	}
	return out
}

func makeMovies(n int) []movie.Movie {
	out := make([]movie.Movie, n)
	for i := range out {
		out[i] = movie.Movie{ID: i + 1, Title: fmt.Sprintf("Movie %d", i)}
	}
	return out
}

func makePosts(n int) []social.Post {
	out := make([]social.Post, n)
	for i := range out {
		out[i] = social.Post{ID: fmt.Sprintf("social_%d", i+1), Username: fmt.Sprintf("user%d", i)}
	}
	return out
}

func typesOf(items []model.ContentItem) []model.ItemType {
	out := make([]model.ItemType, len(items))
	for i, item := range items {
		out[i] = item.Type
	}
	return out
}

func TestLoadDefaultFeedCapsAndOrders(t *testing.T) {
	n := &fakeNews{articles: makeArticles(10)}
	m := &fakeMovies{movies: makeMovies(9)}
	s := &fakeSocial{posts: makePosts(5)}
	o := New(n, m, s, time.Second)

	items, err := o.LoadDefaultFeed(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, items, FeedNewsCap+FeedMovieCap+FeedSocialCap)

	for i := 0; i < FeedNewsCap; i++ {
		assert.Equal(t, model.TypeNews, items[i].Type)
		assert.Equal(t, fmt.Sprintf("News %d", i), items[i].Title, "news keeps upstream order")
	}
	for i := FeedNewsCap; i < FeedNewsCap+FeedMovieCap; i++ {
		assert.Equal(t, model.TypeMovie, items[i].Type)
		assert.False(t, items[i].Trending)
	}
	for i := FeedNewsCap + FeedMovieCap; i < len(items); i++ {
		assert.Equal(t, model.TypeSocial, items[i].Type)
	}
}

func TestLoadDefaultFeedPassesCategory(t *testing.T) {
	n := &fakeNews{categories: make(chan string, 2)}
	o := New(n, &fakeMovies{}, &fakeSocial{}, time.Second)

	_, err := o.LoadDefaultFeed(context.Background(), "science")
	require.NoError(t, err)
	assert.Equal(t, "science", <-n.categories)

	_, err = o.LoadDefaultFeed(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, "", <-n.categories)
}

func TestLoadDefaultFeedOnlySocialSucceeds(t *testing.T) {
	n := &fakeNews{err: errDown}
	m := &fakeMovies{err: errDown}
	s := &fakeSocial{posts: makePosts(4)}
	o := New(n, m, s, time.Second)

	items, err := o.LoadDefaultFeed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 4)
	for _, item := range items {
		assert.Equal(t, model.TypeSocial, item.Type)
	}
}

func TestLoadDefaultFeedAllSourcesFailIsNotAnError(t *testing.T) {
	o := New(&fakeNews{err: errDown}, &fakeMovies{err: errDown}, &fakeSocial{err: errDown}, time.Second)

	items, err := o.LoadDefaultFeed(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSkippedSourceLogTagsUpstreamFailures(t *testing.T) {
	var buf bytes.Buffer
	logging.InitWriter(&buf, "warn")
	t.Cleanup(func() { logging.Logger = nil })

	o := New(&fakeNews{err: errDown}, &fakeMovies{err: errors.New("bad adapter")}, &fakeSocial{}, time.Second)
	_, err := o.LoadDefaultFeed(context.Background(), "")
	require.NoError(t, err)

	var newsLine, movieLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "source=news"):
			newsLine = line
		case strings.Contains(line, "source=movie"):
			movieLine = line
		}
	}
	assert.Contains(t, newsLine, "upstream=true")
	assert.Contains(t, movieLine, "upstream=false")
}

func TestLoadTrending(t *testing.T) {
	n := &fakeNews{articles: makeArticles(6), categories: make(chan string, 1)}
	m := &fakeMovies{trending: makeMovies(10)}
	o := New(n, m, &fakeSocial{}, time.Second)

	items, err := o.LoadTrending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, TrendingMovieCap+TrendingNewsCap)
	assert.Equal(t, TrendingNewsCategory, <-n.categories)

	for i, item := range items {
		assert.True(t, item.Trending, "item %d not flagged trending", i)
		if i < TrendingMovieCap {
			assert.Equal(t, model.TypeMovie, item.Type)
		} else {
			assert.Equal(t, model.TypeNews, item.Type)
		}
	}
}

func TestLoadTrendingNewsDown(t *testing.T) {
	o := New(&fakeNews{err: errDown}, &fakeMovies{trending: makeMovies(3)}, &fakeSocial{}, time.Second)

	items, err := o.LoadTrending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.ItemType{model.TypeMovie, model.TypeMovie, model.TypeMovie}, typesOf(items))
}

func TestSearchBlankQueryCallsNoAdapter(t *testing.T) {
	n, m, s := &fakeNews{}, &fakeMovies{}, &fakeSocial{}
	o := New(n, m, s, time.Second)

	for _, q := range []string{"", "   "} {
		items, err := o.Search(context.Background(), q)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
	assert.Zero(t, n.calls.Load()+m.calls.Load()+s.calls.Load())
}

func TestSearchCapsAndOrders(t *testing.T) {
	o := New(
		&fakeNews{articles: makeArticles(9)},
		&fakeMovies{movies: makeMovies(9)},
		&fakeSocial{posts: makePosts(9)},
		time.Second,
	)

	items, err := o.Search(context.Background(), "mars")
	require.NoError(t, err)
	require.Len(t, items, SearchNewsCap+SearchMovieCap+SearchSocialCap)
	assert.Equal(t, model.TypeNews, items[0].Type)
	assert.Equal(t, model.TypeMovie, items[SearchNewsCap].Type)
	assert.Equal(t, model.TypeSocial, items[SearchNewsCap+SearchMovieCap].Type)
}

func TestSourceTimeoutSkipsSlowSource(t *testing.T) {
	n := &fakeNews{articles: makeArticles(2), delay: time.Second}
	o := New(n, &fakeMovies{movies: makeMovies(1)}, &fakeSocial{}, 20*time.Millisecond)

	items, err := o.LoadDefaultFeed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []model.ItemType{model.TypeMovie}, typesOf(items))
}

func TestCancelledContextIsOrchestrationError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := New(&fakeNews{}, &fakeMovies{}, &fakeSocial{}, time.Second)

	_, err := o.LoadDefaultFeed(ctx, "")
	var oe *OrchestrationError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, OpFeed, oe.Op)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPanickingBranchIsOrchestrationError(t *testing.T) {
	o := New(&fakeNews{}, &fakeMovies{panics: true}, &fakeSocial{}, time.Second)

	_, err := o.LoadDefaultFeed(context.Background(), "")
	var oe *OrchestrationError
	require.True(t, errors.As(err, &oe))
	assert.True(t, errors.Is(err, errBranchPanic))
}
