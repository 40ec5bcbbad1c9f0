package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/services/embeddings"
	"github.com/ternarybob/auspex/internal/services/llm"
	"github.com/ternarybob/auspex/internal/services/retrieval"
	auditstore "github.com/ternarybob/auspex/internal/storage/badger"
	"github.com/ternarybob/auspex/internal/storage/sqlite"
)

func main() {
	configPath := os.Getenv("AUSPEX_CONFIG")
	if configPath == "" {
		configPath = "auspex.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	auditDB, err := auditstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open audit store")
	}
	auditStorage := auditstore.NewAuditStorage(auditDB, logger)

	storageManager, err := sqlite.NewManager(logger, &config.Storage.SQLite, auditStorage)
	if err != nil {
		auditStorage.Close()
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	llmServices, err := llm.NewServices(config, auditStorage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM services")
	}
	defer llmServices.Close()

	embeddingService := embeddings.NewService(llmServices.Embed, config.LLM.EmbedDimension, logger)
	retrievalService := retrieval.NewService(storageManager.Store(), embeddingService, &config.Retrieval, logger)

	mcpServer := server.NewMCPServer(
		"auspex",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchArticlesTool(), handleSearchArticles(retrievalService, logger))
	mcpServer.AddTool(createSearchSnippetsTool(), handleSearchSnippets(retrievalService, logger))
	mcpServer.AddTool(createListTickersTool(), handleListTickers(storageManager, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
