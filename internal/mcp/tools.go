// ABOUTME: MCP tool definitions and registration for the bookrag server
// ABOUTME: Exposes ingestion, retrieval, question answering, and freshness checks
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bookrag/bookrag/internal/agent"
	"github.com/bookrag/bookrag/internal/pipeline"
	"github.com/bookrag/bookrag/internal/retrieval"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, ingestor *pipeline.Ingestor, retrieve retrieval.Func, agent *agent.Agent, defaultTopK int) *Handlers {
	handlers := &Handlers{
		ingestor:    ingestor,
		retrieve:    retrieve,
		agent:       agent,
		defaultTopK: defaultTopK,
	}

	// 1. ingest_site - Crawl and ingest a documentation site
	server.AddTool(mcp.Tool{
		Name:        "ingest_site",
		Description: "Crawl a documentation site, chunk and embed its pages, and store them in the vector database. Re-running on unchanged content is a no-op.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Root URL of the site to ingest",
				},
			},
			Required: []string{"url"},
		},
	}, handlers.IngestSite)

	// 2. query_docs - Semantic search over ingested content
	server.AddTool(mcp.Tool{
		Name:        "query_docs",
		Description: "Search the ingested documentation by semantic similarity and return the most relevant chunks with scores and source URLs.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text query to search for",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.QueryDocs)

	// 3. ask_docs - Answer a question grounded in retrieved content
	server.AddTool(mcp.Tool{
		Name:        "ask_docs",
		Description: "Answer a natural-language question using the ingested documentation as context. Returns the answer with its source chunks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer from the documentation",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskDocs)

	// 4. check_freshness - Compare stored content against the live site
	server.AddTool(mcp.Tool{
		Name:        "check_freshness",
		Description: "Crawl the site and report which pages have changed since they were last ingested, without writing anything.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Root URL of the site to check",
				},
			},
			Required: []string{"url"},
		},
	}, handlers.CheckFreshness)

	return handlers
}
