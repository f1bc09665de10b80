// Package social serves a fixed set of mock social posts. There is no real
// backing service; delays emulate network latency.
package social

import (
	"context"
	"strings"
	"time"

	"github.com/abelbrown/dashboard/internal/sources"
)

// Default latencies.
const (
	DefaultFetchDelay  = 800 * time.Millisecond
	DefaultSearchDelay = 600 * time.Millisecond
)

// Post is one mock social post.
type Post struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Content   string   `json:"content"`
	Image     string   `json:"image,omitempty"`
	Likes     int      `json:"likes"`
	Comments  int      `json:"comments"`
	Timestamp string   `json:"timestamp"`
	Hashtags  []string `json:"hashtags"`
	Verified  bool     `json:"verified,omitempty"`
}

var mockPosts = []Post{
	{
		ID:        "social_1",
		Username:  "techguru2024",
		Content:   "Just witnessed the most incredible AI demo at #TechConf2024! The future is here 🚀",
		Image:     "/tech-conference-ai-demo.jpg",
		Likes:     1247,
		Comments:  89,
		Timestamp: "2024-01-15T10:30:00Z",
		Hashtags:  []string{"TechConf2024", "AI", "Innovation"},
		Verified:  true,
	},
	{
		ID:        "social_2",
		Username:  "spacefan_official",
		Content:   "Mars rover just sent back the most stunning images! Space exploration never ceases to amaze me ✨",
		Image:     "/mars-rover-space-exploration.jpg",
		Likes:     2156,
		Comments:  234,
		Timestamp: "2024-01-15T08:15:00Z",
		Hashtags:  []string{"Mars", "SpaceExploration", "NASA"},
	},
	{
		ID:        "social_3",
		Username:  "climate_action",
		Content:   "Renewable energy just hit a new milestone! Solar power is now cheaper than ever 🌱",
		Image:     "/solar-panels-renewable-energy.jpg",
		Likes:     892,
		Comments:  156,
		Timestamp: "2024-01-15T06:45:00Z",
		Hashtags:  []string{"ClimateAction", "RenewableEnergy", "Solar"},
		Verified:  true,
	},
	{
		ID:        "social_4",
		Username:  "movie_insider",
		Content:   "Behind the scenes of the latest blockbuster! The cinematography is absolutely breathtaking 🎬",
		Image:     "/movie-set-cinematography-behind-scenes.jpg",
		Likes:     1543,
		Comments:  201,
		Timestamp: "2024-01-15T14:20:00Z",
		Hashtags:  []string{"Movies", "BehindTheScenes", "Cinematography"},
		Verified:  true,
	},
}

// Adapter serves the mock posts.
type Adapter struct {
	fetchDelay  time.Duration
	searchDelay time.Duration
}

// New creates an Adapter with the given latencies. Zero disables a delay.
func New(fetchDelay, searchDelay time.Duration) *Adapter {
	return &Adapter{fetchDelay: fetchDelay, searchDelay: searchDelay}
}

// FetchDefault returns every post, or only posts with a hashtag containing
// hashtag when one is given.
func (a *Adapter) FetchDefault(ctx context.Context, hashtag string) ([]Post, error) {
	if err := wait(ctx, a.fetchDelay); err != nil {
		return nil, err
	}
	if hashtag == "" || hashtag == "all" {
		return clonePosts(mockPosts), nil
	}
	needle := strings.ToLower(hashtag)
	var out []Post
	for _, p := range mockPosts {
		if hasTag(p, needle) {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

// Search matches content, username or hashtags case-insensitively. Blank
// queries return nothing without waiting.
func (a *Adapter) Search(ctx context.Context, query string) ([]Post, error) {
	if sources.BlankQuery(query) {
		return nil, nil
	}
	if err := wait(ctx, a.searchDelay); err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var out []Post
	for _, p := range mockPosts {
		if strings.Contains(strings.ToLower(p.Content), needle) ||
			strings.Contains(strings.ToLower(p.Username), needle) ||
			hasTag(p, needle) {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

func hasTag(p Post, needle string) bool {
	for _, tag := range p.Hashtags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if ctx.Err() != nil {
			return &sources.UpstreamError{Source: "social", Err: ctx.Err()}
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return &sources.UpstreamError{Source: "social", Err: ctx.Err()}
	case <-t.C:
		return nil
	}
}

func clonePost(p Post) Post {
	p.Hashtags = append([]string(nil), p.Hashtags...)
	return p
}

func clonePosts(in []Post) []Post {
	out := make([]Post, len(in))
	for i, p := range in {
		out[i] = clonePost(p)
	}
	return out
}
