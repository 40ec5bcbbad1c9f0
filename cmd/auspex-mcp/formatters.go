package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/auspex/internal/models"
)

// formatSearchResult formats a retrieval result as markdown
func formatSearchResult(query, result string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for \"%s\"\n\n", query))

	if strings.TrimSpace(result) == "" {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	sb.WriteString(result)
	return sb.String()
}

// formatTickers formats the ticker inventory as markdown
func formatTickers(tickers []*models.Ticker, counts map[string]int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Tracked Tickers (%d)\n\n", len(tickers)))

	if len(tickers) == 0 {
		sb.WriteString("No tickers stored.\n")
		return sb.String()
	}

	for i, ticker := range tickers {
		sb.WriteString(fmt.Sprintf("%d. **%s**", i+1, ticker.Symbol))
		if ticker.Company != "" {
			sb.WriteString(fmt.Sprintf(" - %s", ticker.Company))
		}
		sb.WriteString("\n")
		if ticker.Industry != "" {
			sb.WriteString(fmt.Sprintf("   Industry: %s\n", ticker.Industry))
		}
		if ticker.Exchange != "" {
			sb.WriteString(fmt.Sprintf("   Exchange: %s\n", ticker.Exchange))
		}
		sb.WriteString(fmt.Sprintf("   Articles: %d\n", counts[ticker.Symbol]))
		if ticker.LastUpdatedNews != nil {
			sb.WriteString(fmt.Sprintf("   News updated: %s\n", ticker.LastUpdatedNews.Format("2006-01-02 15:04")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
