package blogservice

import "time"

// SeedPosts is the built-in post list used when no data file can be loaded.
func SeedPosts() []Post {
	return []Post{
		{
			ID:        1,
			Title:     "難與不難",
			Slug:      "difficulty-and-ease",
			Excerpt:   "Reflections on the nature of difficulty and challenge in research and life.",
			Content:   "Full content of the blog post...",
			Date:      time.Date(2024, time.November, 2, 12, 0, 0, 0, time.UTC),
			Category:  "Philosophy",
			ReadTime:  "3 min read",
			Published: true,
			Author:    DefaultAuthor,
		},
		{
			ID:        2,
			Title:     "選擇公司的指標",
			Slug:      "company-selection-criteria",
			Excerpt:   "Key indicators and considerations when choosing a company to work for.",
			Content:   "Full content of the blog post...",
			Date:      time.Date(2024, time.November, 2, 8, 0, 0, 0, time.UTC),
			Category:  "Career",
			ReadTime:  "5 min read",
			Published: true,
			Author:    DefaultAuthor,
		},
		{
			ID:        3,
			Title:     `The Essence of the "Activity" of Programming`,
			Slug:      "essence-of-programming-activity",
			Excerpt:   "Exploring the fundamental nature of programming as an intellectual activity.",
			Content:   "Full content of the blog post...",
			Date:      time.Date(2024, time.October, 6, 12, 0, 0, 0, time.UTC),
			Category:  "Programming",
			ReadTime:  "7 min read",
			Published: true,
			Author:    DefaultAuthor,
		},
	}
}
