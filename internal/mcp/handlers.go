// ABOUTME: MCP tool handler implementations for the bookrag server
// ABOUTME: Validates arguments and returns JSON results or tool errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bookrag/bookrag/internal/agent"
	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/pipeline"
	"github.com/bookrag/bookrag/internal/retrieval"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	ingestor    *pipeline.Ingestor
	retrieve    retrieval.Func
	agent       *agent.Agent
	defaultTopK int
}

// IngestSite handles the ingest_site tool
func (h *Handlers) IngestSite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required and must be a string"), nil
	}
	if err := config.ValidateURL(url); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metrics, err := h.ingestor.Run(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}
	return jsonResult(metrics)
}

// QueryDocs handles the query_docs tool
func (h *Handlers) QueryDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	topK := request.GetInt("top_k", h.defaultTopK)

	chunks, err := h.retrieve(ctx, query, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}
	if len(chunks) == 0 {
		return mcp.NewToolResultText("No relevant results found."), nil
	}
	return jsonResult(chunks)
}

// AskDocs handles the ask_docs tool
func (h *Handlers) AskDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	resp, err := h.agent.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer: %v", err)), nil
	}
	return jsonResult(resp)
}

// CheckFreshness handles the check_freshness tool
func (h *Handlers) CheckFreshness(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required and must be a string"), nil
	}
	if err := config.ValidateURL(url); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stale, err := h.ingestor.CheckFreshness(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("freshness check failed: %v", err)), nil
	}
	return jsonResult(stale)
}

// jsonResult marshals a value into a text tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
