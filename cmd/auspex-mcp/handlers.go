package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// discardSink drops progress events; MCP responses carry only the result.
var discardSink = interfaces.EventSinkFunc(func(models.Event) error { return nil })

// handleSearchArticles implements the search_articles tool
func handleSearchArticles(retrievalService interfaces.RetrievalService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		result, err := retrievalService.SearchArticles(ctx, query, discardSink)
		if err != nil {
			logger.Error().Err(err).Msg("Article search failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Search error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatSearchResult(query, result)),
			},
		}, nil
	}
}

// handleSearchSnippets implements the search_snippets tool
func handleSearchSnippets(retrievalService interfaces.RetrievalService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		result, err := retrievalService.SearchSnippets(ctx, query, discardSink)
		if err != nil {
			logger.Error().Err(err).Msg("Snippet search failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Search error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatSearchResult(query, result)),
			},
		}, nil
	}
}

// handleListTickers implements the list_tickers tool
func handleListTickers(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		store := storage.Store()

		tickers, err := store.ListTickers(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list tickers")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Storage error: %v", err)),
				},
			}, nil
		}

		counts := make(map[string]int, len(tickers))
		for _, ticker := range tickers {
			articles, err := store.GetArticlesByTicker(ctx, ticker.Symbol)
			if err != nil {
				logger.Error().Err(err).Str("symbol", ticker.Symbol).Msg("Failed to count articles")
				continue
			}
			counts[ticker.Symbol] = len(articles)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatTickers(tickers, counts)),
			},
		}, nil
	}
}
