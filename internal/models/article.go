package models

// Article represents a stored news item. The provider's external ID is the
// de-duplication key; content holds cleaned plain text, not raw HTML.
type Article struct {
	ID         int64  `json:"id"`
	ExternalID int64  `json:"external_id"` // unique, from the news provider

	Symbols  []string       `json:"symbols,omitempty"` // tickers mentioned
	Author   string         `json:"author,omitempty"`
	Source   string         `json:"source,omitempty"`
	URL      string         `json:"url,omitempty"`
	Created  string         `json:"created,omitempty"` // provider timestamp, kept verbatim
	Headline string         `json:"headline,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Content  string         `json:"content,omitempty"`
	Images   []ArticleImage `json:"images,omitempty"`
}

// ArticleImage is one image attachment on an article.
type ArticleImage struct {
	Size string `json:"size,omitempty"`
	URL  string `json:"url"`
}

// Preview reduces the article to its summary shape.
func (a *Article) Preview() ArticlePreview {
	return ArticlePreview{
		URL:      a.URL,
		Headline: a.Headline,
		Images:   a.Images,
		Mentions: a.Symbols,
		Summary:  a.Summary,
	}
}
