package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcdickinson/lovvelger/internal/daemon"
	"github.com/jcdickinson/lovvelger/internal/markdown"
	"github.com/jcdickinson/lovvelger/internal/rpc"
)

const instructions = `lovvelger looks up Norwegian laws and regulations on Lovdata.

Typical flow:
1. search_laws finds laws by name or keyword and loads the best matches.
2. search_structure searches chapters and paragraphs of the loaded laws.
   Results carry references such as LOV-2005-06-17-62_3-1.
3. Read lov://<reference> to get the text of a law, chapter or paragraph.
4. select turns a reference into a citation value with a juridical
   reference like "§ 3-1 Rett til arbeid".

Laws are identified by their Lovdata base (LOV-... or FOR-...). add_laws
loads them directly when the base is already known.`

type Server struct {
	mcpServer *server.MCPServer
	client    *daemon.Client
}

func NewServer(socketPath string) (*Server, error) {
	client, err := daemon.ConnectOrSpawn(socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}

	s := &Server{client: client}

	mcpServer := server.NewMCPServer(
		"lovvelger",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s, nil
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("add_laws",
			mcp.WithDescription("Fetch and parse laws from Lovdata by base (e.g. LOV-2005-06-17-62). Synchronous, returns chapter and paragraph counts per law."),
			addLawsSchema,
			mcp.WithBoolean("refresh",
				mcp.Description("Fetch again even if the law is already loaded"),
			),
		),
		s.handleAddLaws,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_laws",
			mcp.WithDescription("Search Lovdata for laws by name or keyword. By default the top results are loaded so search_structure can find their paragraphs."),
			mcp.WithString("query",
				mcp.Description("Search query (law name, short name or keyword)"),
				mcp.Required(),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 5)"),
			),
			mcp.WithBoolean("load",
				mcp.Description("Load the returned laws (default true)"),
			),
		),
		s.handleSearchLaws,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_structure",
			mcp.WithDescription("Search chapter and paragraph titles of the loaded laws. Returns paragraph references that can be read as lov:// resources."),
			mcp.WithString("query",
				mcp.Description("Text to match against paragraph numbers and titles"),
				mcp.Required(),
			),
			mcp.WithArray("laws",
				mcp.Description("Optional list of law bases to search within"),
				mcp.Items(map[string]interface{}{"type": "string"}),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 50)"),
			),
			mcp.WithBoolean("index",
				mcp.Description("Search the stored paragraph index, including laws not held in memory"),
			),
		),
		s.handleSearchStructure,
	)

	mcpServer.AddTool(
		mcp.NewTool("select",
			mcp.WithDescription("Resolve a reference (law base or base_chapterIndex) to a selection with its juridical reference. An empty reference clears the selection."),
			mcp.WithString("reference",
				mcp.Description("Reference such as LOV-2005-06-17-62_3-1"),
			),
			mcp.WithBoolean("preselected",
				mcp.Description("Select the configured preselected reference instead"),
			),
		),
		s.handleSelect,
	)
}

func addLawsSchema(t *mcp.Tool) {
	t.InputSchema.Required = append(t.InputSchema.Required, "laws")
	t.InputSchema.Properties["laws"] = map[string]any{
		"type":        "array",
		"description": "List of laws to load",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"base": map[string]any{
					"type":        "string",
					"description": "Lovdata base (e.g., \"LOV-2005-06-17-62\")",
				},
				"name": map[string]any{
					"type":        "string",
					"description": "Display name used when Lovdata only returns a generic page title",
				},
			},
			"required": []string{"base"},
		},
	}
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			markdown.Scheme+"{reference}",
			"Law, chapter or paragraph",
			mcp.WithTemplateDescription("Read a law outline, a chapter or a paragraph. Search results return these URIs."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

func (s *Server) handleAddLaws(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	specs, err := lawSpecs(args["laws"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	refresh, _ := args["refresh"].(bool)
	resp, err := s.client.AddLaws(ctx, rpc.AddLawsRequest{Laws: specs, Refresh: refresh}, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add laws: %v", err)), nil
	}

	return jsonResult(resp.Results), nil
}

func (s *Server) handleSearchLaws(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	searchReq := rpc.SearchLawsRequest{Query: query, Load: true}
	if limit, ok := args["limit"].(float64); ok {
		searchReq.Limit = int(limit)
	}
	if load, ok := args["load"].(bool); ok {
		searchReq.Load = load
	}

	resp, err := s.client.SearchLaws(ctx, searchReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(resp.Results), nil
}

func (s *Server) handleSearchStructure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	searchReq := rpc.SearchRequest{Query: query, Laws: stringSlice(args["laws"])}
	if limit, ok := args["limit"].(float64); ok {
		searchReq.Limit = int(limit)
	}
	if index, ok := args["index"].(bool); ok {
		searchReq.Index = index
	}

	resp, err := s.client.Search(ctx, searchReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if resp.Skipped {
		return mcp.NewToolResultError("query is too short"), nil
	}

	return jsonResult(resp.Hits), nil
}

func (s *Server) handleSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	reference, _ := args["reference"].(string)
	preselected, _ := args["preselected"].(bool)

	resp, err := s.client.Select(ctx, rpc.SelectRequest{
		Reference:   strings.TrimPrefix(reference, markdown.Scheme),
		Preselected: preselected,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("select failed: %v", err)), nil
	}

	return jsonResult(resp), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	reference := strings.TrimPrefix(uri, markdown.Scheme)
	if reference == "" || reference == uri {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	resp, err := s.client.Get(ctx, rpc.GetRequest{Reference: reference})
	if err != nil {
		return nil, fmt.Errorf("getting reference: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     resp.Markdown,
		},
	}, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}

// lawSpecs decodes the laws argument. Plain strings are accepted as bases.
func lawSpecs(raw any) ([]rpc.LawSpec, error) {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("missing required parameter: laws")
	}

	specs := make([]rpc.LawSpec, 0, len(items))
	for _, item := range items {
		if base, ok := item.(string); ok {
			specs = append(specs, rpc.LawSpec{Base: base})
			continue
		}

		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("invalid laws parameter: %v", err)
		}
		var spec rpc.LawSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("invalid laws format: %v", err)
		}
		if spec.Base == "" {
			return nil, fmt.Errorf("invalid laws format: base is required")
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func stringSlice(raw any) []string {
	items, _ := raw.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonResult(v any) *mcp.CallToolResult {
	resultJSON, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(resultJSON))
}
