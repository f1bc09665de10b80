// Package model defines ContentItem, the one shape every source is
// normalized into before it reaches the stores or the view.
package model

// ItemType tags which source an item came from and which optional fields
// are populated.
type ItemType string

const (
	TypeNews   ItemType = "news"
	TypeMovie  ItemType = "movie"
	TypeSocial ItemType = "social"
)

// Default categories assigned when a source omits one.
const (
	CategoryGeneral       = "general"
	CategoryEntertainment = "entertainment"
	CategorySocial        = "social"
	CategoryAll           = "all"
)

// Image placeholders used when a source has no image.
const (
	PlaceholderNews   = "/news-article.png"
	PlaceholderMovie  = "/abstract-movie-poster.png"
	PlaceholderSocial = "/social-media-post.png"
)

// NoDescription replaces empty upstream descriptions.
const NoDescription = "No description available"

// Untitled replaces empty upstream titles.
const Untitled = "Untitled"

// Categories is the fixed category catalog, "all" first.
func Categories() []string {
	return []string{
		CategoryAll,
		"technology",
		"entertainment",
		"business",
		"health",
		"science",
		"sports",
	}
}

// ContentItem is a normalized news, movie or social entry.
type ContentItem struct {
	ID          string   `json:"id"`
	Type        ItemType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Trending    bool     `json:"trending,omitempty"`
	IsFavorite  bool     `json:"isFavorite,omitempty"`

	// news
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	URL         string `json:"url,omitempty"`

	// movie
	Rating float64 `json:"rating,omitempty"`

	// social
	Username string   `json:"username,omitempty"`
	Likes    int      `json:"likes,omitempty"`
	Comments int      `json:"comments,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// Clone returns a copy that shares no slices with c.
func (c ContentItem) Clone() ContentItem {
	if c.Hashtags != nil {
		tags := make([]string, len(c.Hashtags))
		copy(tags, c.Hashtags)
		c.Hashtags = tags
	}
	return c
}

// CloneItems deep-copies a list of items. A nil input yields nil.
func CloneItems(items []ContentItem) []ContentItem {
	if items == nil {
		return nil
	}
	out := make([]ContentItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
