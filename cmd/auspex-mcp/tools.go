package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchArticlesTool returns the search_articles tool definition
func createSearchArticlesTool() mcp.Tool {
	return mcp.NewTool("search_articles",
		mcp.WithDescription("Semantic search over stored stock news, returning distinct full articles"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language search query"),
		),
	)
}

// createSearchSnippetsTool returns the search_snippets tool definition
func createSearchSnippetsTool() mcp.Tool {
	return mcp.NewTool("search_snippets",
		mcp.WithDescription("Semantic search over stored stock news, returning the best matching passages"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language search query"),
		),
	)
}

// createListTickersTool returns the list_tickers tool definition
func createListTickersTool() mcp.Tool {
	return mcp.NewTool("list_tickers",
		mcp.WithDescription("List tracked ticker symbols with company profiles and article counts"),
	)
}
