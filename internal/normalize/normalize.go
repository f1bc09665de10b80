// Package normalize maps source records onto model.ContentItem.
//
// The functions are total: missing upstream fields map to defaults and
// nothing panics. Ids are deterministic, so refetching the same upstream
// entity yields the same id and favorite/reorder state survives a refresh.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
	"github.com/abelbrown/dashboard/internal/sources/social"
)

// News converts a news article.
func News(a news.Article) model.ContentItem {
	return model.ContentItem{
		ID:          NewsID(a),
		Type:        model.TypeNews,
		Title:       orDefault(a.Title, model.Untitled),
		Description: orDefault(a.Description, model.NoDescription),
		Image:       orDefault(a.URLToImage, model.PlaceholderNews),
		Category:    orDefault(a.Category, model.CategoryGeneral),
		Source:      a.Source.Name,
		PublishedAt: a.PublishedAt,
		URL:         a.URL,
	}
}

// Movie converts a movie. trending marks items produced by the trending
// path.
func Movie(m movie.Movie, trending bool) model.ContentItem {
	return model.ContentItem{
		ID:          fmt.Sprintf("movie_%d", m.ID),
		Type:        model.TypeMovie,
		Title:       orDefault(m.Title, model.Untitled),
		Description: orDefault(m.Overview, model.NoDescription),
		Image:       movie.PosterURL(m.PosterPath),
		Category:    model.CategoryEntertainment,
		Trending:    trending,
		Rating:      m.VoteAverage,
		PublishedAt: m.ReleaseDate,
	}
}

// Social converts a social post.
func Social(p social.Post) model.ContentItem {
	id := p.ID
	if id == "" {
		id = "social_" + hashString(p.Username+"\x00"+p.Timestamp)
	}
	title := model.Untitled
	if p.Username != "" {
		title = "@" + p.Username
	}
	var tags []string
	if len(p.Hashtags) > 0 {
		tags = append([]string(nil), p.Hashtags...)
	}
	return model.ContentItem{
		ID:          id,
		Type:        model.TypeSocial,
		Title:       title,
		Description: orDefault(p.Content, model.NoDescription),
		Image:       orDefault(p.Image, model.PlaceholderSocial),
		Category:    model.CategorySocial,
		Username:    p.Username,
		Likes:       p.Likes,
		Comments:    p.Comments,
		PublishedAt: p.Timestamp,
		Hashtags:    tags,
	}
}

// NewsID derives a stable id from title, publish time and source name.
// Articles missing all three fall back to the URL.
func NewsID(a news.Article) string {
	key := a.Title + "\x00" + a.PublishedAt + "\x00" + a.Source.Name
	if a.Title == "" && a.PublishedAt == "" && a.Source.Name == "" {
		key = a.URL
	}
	return "news_" + hashString(key)
}

// hashString creates a short hash of a string for use as an ID.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8]) // 16 character hex string
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
