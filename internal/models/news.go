package models

// NewsItem is one raw news payload from the news provider, prior to content
// cleaning and persistence.
type NewsItem struct {
	ID       int64          `json:"id"`
	Symbols  []string       `json:"symbols"`
	Author   string         `json:"author"`
	Source   string         `json:"source"`
	URL      string         `json:"url"`
	Created  string         `json:"created_at"`
	Headline string         `json:"headline"`
	Summary  string         `json:"summary"`
	Content  string         `json:"content"` // raw HTML from the provider
	Images   []ArticleImage `json:"images"`
}
