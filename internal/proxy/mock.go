package proxy

import (
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
)

// mockNews is served when no news provider is configured or the provider
// fails. Timestamps are fixed: news ids hash publishedAt, so a moving
// timestamp would give the same article a new id on every request.
func mockNews() news.Response {
	articles := []news.Article{
		{
			Title:       "AI Revolution Continues: New Breakthrough in Machine Learning",
			Description: "Scientists have developed a new AI model that can understand context better than ever before.",
			URL:         "https://example.com/ai-breakthrough",
			URLToImage:  "/tech-conference-ai-demo.jpg",
			PublishedAt: "2024-01-15T10:00:00Z",
			Category:    "technology",
		},
		{
			Title:       "Space Exploration Reaches New Heights",
			Description: "NASA's latest mission to Mars reveals fascinating discoveries about the red planet.",
			URL:         "https://example.com/mars-mission",
			URLToImage:  "/mars-rover-space-exploration.jpg",
			PublishedAt: "2024-01-15T09:30:00Z",
			Category:    "science",
		},
		{
			Title:       "Renewable Energy Adoption Accelerates Globally",
			Description: "Solar and wind power installations reach record highs as countries commit to clean energy.",
			URL:         "https://example.com/renewable-energy",
			URLToImage:  "/solar-panels-renewable-energy.jpg",
			PublishedAt: "2024-01-15T08:45:00Z",
			Category:    "business",
		},
	}
	articles[0].Source.Name = "Tech News"
	articles[1].Source.Name = "Space Daily"
	articles[2].Source.Name = "Green Tech"
	return news.Response{Articles: articles, TotalResults: len(articles)}
}

// mockMovies is served when no movie provider is configured or the provider
// fails.
func mockMovies() movie.Response {
	const backdrop = "/movie-set-cinematography-behind-scenes.jpg"
	results := []movie.Movie{
		{
			ID:           1,
			Title:        "The Future of Cinema",
			Overview:     "A groundbreaking film that explores the intersection of technology and storytelling.",
			PosterPath:   "/abstract-movie-poster.png",
			BackdropPath: backdrop,
			ReleaseDate:  "2024-12-01",
			VoteAverage:  8.5,
			GenreIDs:     []int{28, 12, 878},
			Popularity:   95.2,
		},
		{
			ID:           2,
			Title:        "Digital Dreams",
			Overview:     "An epic adventure through virtual worlds and digital landscapes.",
			PosterPath:   "/abstract-movie-poster.png",
			BackdropPath: backdrop,
			ReleaseDate:  "2024-11-15",
			VoteAverage:  7.8,
			GenreIDs:     []int{878, 12},
			Popularity:   87.1,
		},
		{
			ID:           3,
			Title:        "Tomorrow's Heroes",
			Overview:     "A thrilling story about ordinary people doing extraordinary things.",
			PosterPath:   "/abstract-movie-poster.png",
			BackdropPath: backdrop,
			ReleaseDate:  "2024-10-20",
			VoteAverage:  8.2,
			GenreIDs:     []int{28, 18},
			Popularity:   92.5,
		},
	}
	return movie.Response{Results: results, TotalResults: len(results), Page: 1}
}
