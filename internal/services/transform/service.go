// Package transform converts provider HTML into clean plain text suitable
// for chunking and embedding.
package transform

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// Service provides HTML to text conversion for article content.
type Service struct {
	converter *md.Converter
	logger    arbor.ILogger
}

// NewService creates a new transform service. The converter is configured to
// drop links and images so the stored text carries prose only.
func NewService(logger arbor.ILogger) *Service {
	converter := md.NewConverter("", true, nil)
	converter.AddRules(
		md.Rule{
			Filter: []string{"a"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				// Keep the anchor text, drop the href.
				return md.String(content)
			},
		},
		md.Rule{
			Filter: []string{"img", "picture", "figure"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				return md.String("")
			},
		},
	)

	return &Service{
		converter: converter,
		logger:    logger,
	}
}

// CleanHTML converts HTML content to plain text. Conversion failures fall
// back to tag stripping so ingestion never stalls on malformed markup.
func (s *Service) CleanHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	converted, err := s.converter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML conversion failed, using fallback")
		return stripHTMLTags(html)
	}

	cleaned := strings.TrimSpace(converted)
	if cleaned == "" && html != "" {
		s.logger.Debug().
			Int("html_length", len(html)).
			Msg("HTML conversion produced empty output, applying fallback")
		return stripHTMLTags(html)
	}

	return cleaned
}

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	stripped := re.ReplaceAllString(htmlStr, "")

	spaceRe := regexp.MustCompile(`[ \t]+`)
	cleaned := spaceRe.ReplaceAllString(stripped, " ")

	// Decode HTML entities (basic set)
	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", "\"")
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")

	return strings.TrimSpace(cleaned)
}
