// Package mcp exposes every configured source as a pair of MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/logger"
	"github.com/kailas-cloud/sunbird/internal/pipeline"
	"github.com/kailas-cloud/sunbird/internal/source"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

// SearchToolName is the search tool registered for a source.
func SearchToolName(sourceName string) string { return "search_" + sourceName + "_content" }

// ReadToolName is the content-resolution tool registered for a source.
func ReadToolName(sourceName string) string { return "read_" + sourceName + "_content" }

// New builds an MCP server with the tools of every source in reg.
func New(name, version string, reg *source.Registry, log *zap.Logger) *server.MCPServer {
	if log == nil {
		log = zap.NewNop()
	}
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, src := range reg.All() {
		s.AddTool(searchTool(src), SearchHandler(src, log))
		s.AddTool(readTool(src), ReadHandler(src, log))
	}
	return s
}

func searchTool(src *source.Source) mcpgo.Tool {
	cat := src.Catalog()
	return mcpgo.NewTool(SearchToolName(src.Name()),
		mcpgo.WithDescription(fmt.Sprintf(
			"Search the %s content platform. Filter names: %s. Use %s to list the playable files of a result.",
			src.Name(), strings.Join(cat.FilterNames(), ", "), ReadToolName(src.Name()))),
		mcpgo.WithString(validate.ParamQuery,
			mcpgo.Description("Free-text query")),
		mcpgo.WithObject(validate.ParamFilters,
			mcpgo.Description("Filter name to list of allowed values")),
		mcpgo.WithArray(validate.ParamFields,
			mcpgo.Description("Result fields to return"),
			mcpgo.Items(map[string]any{"type": "string", "enum": cat.Fields()})),
		mcpgo.WithArray(validate.ParamFacets,
			mcpgo.Description("Facets to aggregate"),
			mcpgo.Items(map[string]any{"type": "string", "enum": cat.Facets()})),
		mcpgo.WithObject(validate.ParamSortBy,
			mcpgo.Description(`Field to "asc" or "desc"`)),
		mcpgo.WithNumber(validate.ParamLimit,
			mcpgo.Description("Page size, 1 to 100"),
			mcpgo.Min(1), mcpgo.Max(100)),
		mcpgo.WithNumber(validate.ParamOffset,
			mcpgo.Description("Results to skip"),
			mcpgo.Min(0)),
	)
}

func readTool(src *source.Source) mcpgo.Tool {
	return mcpgo.NewTool(ReadToolName(src.Name()),
		mcpgo.WithDescription(fmt.Sprintf(
			"Resolve a %s content item or collection into its streamable PDF documents. ECML items are excluded.", src.Name())),
		mcpgo.WithString(validate.ParamContentID,
			mcpgo.Required(),
			mcpgo.Description("Content identifier, e.g. do_31307361357558579213961")),
	)
}

// SearchHandler runs the search pipeline with the tool arguments.
func SearchHandler(src *source.Source, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		ctx = withToolLogger(ctx, log, req.Params.Name)
		return toResult(src.Search(ctx, arguments(req)))
	}
}

// ReadHandler runs the content-resolution pipeline with the tool arguments.
func ReadHandler(src *source.Source, log *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		ctx = withToolLogger(ctx, log, req.Params.Name)
		return toResult(src.Artifacts(ctx, arguments(req)))
	}
}

func withToolLogger(ctx context.Context, log *zap.Logger, tool string) context.Context {
	return logger.ContextWithLogger(ctx, log.With(zap.String("tool", tool)))
}

func arguments(req mcpgo.CallToolRequest) map[string]any {
	args := req.GetArguments()
	if args == nil {
		return map[string]any{}
	}
	return args
}

// toResult renders the envelope as the tool's text content. Pipeline
// failures are tool errors, not protocol errors.
func toResult[T any](env pipeline.Envelope[T]) (*mcpgo.CallToolResult, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	res := mcpgo.NewToolResultText(string(data))
	res.IsError = !env.Success
	return res, nil
}

// ServeStdio serves s over stdin/stdout until the input closes.
func ServeStdio(s *server.MCPServer) error {
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
