// Package mcp exposes the recommendation pipeline as MCP tools over stdio.
package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ppiankov/findmindisc/internal/pipeline"
)

// toolEntry pairs a tool definition with a handler factory
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"recommend": {
		def: mcp.NewTool("recommend",
			mcp.WithDescription("Answer a disc golf question with catalog-checked disc recommendations. Flight numbers in the answer are corrected, discs outside the requested speed range or category are removed, and every surviving disc gets simulated flights."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The user's question, Danish or English")),
			mcp.WithArray("shown_discs", mcp.Description("Discs shown in the previous turn, used to resolve references like \"them\""), mcp.WithStringItems()),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecommend },
	},
	"correct_answer": {
		def: mcp.NewTool("correct_answer",
			mcp.WithDescription("Correct flight numbers and manufacturer names in an answer text against the disc catalog."),
			mcp.WithString("answer", mcp.Required(), mcp.Description("Answer text to correct")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorrect },
	},
	"simulate_flight": {
		def: mcp.NewTool("simulate_flight",
			mcp.WithDescription("Simulate the flight path of a catalog disc. Without an arm speed all three are returned."),
			mcp.WithString("disc", mcp.Required(), mcp.Description("Disc name or alias")),
			mcp.WithString("arm", mcp.Description("Arm speed"), mcp.Enum("slow", "normal", "fast")),
			mcp.WithNumber("throw_distance_m", mcp.Description("Thrower's distance in meters; adds a personal flight path")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSimulate },
	},
	"describe_discs": {
		def: mcp.NewTool("describe_discs",
			mcp.WithDescription("Describe catalog discs (flight numbers, turn and fade behaviour, who they suit) without calling an LLM."),
			mcp.WithArray("discs", mcp.Required(), mcp.Description("Disc names"), mcp.WithStringItems()),
			mcp.WithString("language", mcp.Description("da or en"), mcp.Enum("da", "en")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDescribe },
	},
	"extract_intent": {
		def: mcp.NewTool("extract_intent",
			mcp.WithDescription("Extract speed range, category, stability, skill level and referenced discs from a query."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The user's question")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIntent },
	},
	"lookup_disc": {
		def: mcp.NewTool("lookup_disc",
			mcp.WithDescription("Look up the canonical record of a disc by name or alias."),
			mcp.WithString("disc", mcp.Required(), mcp.Description("Disc name or alias")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLookup },
	},
}

// AllToolNames returns the names of every tool, sorted
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewServer creates an MCP server with the pipeline tools registered.
// The recommend tool is left out when the pipeline has no provider.
func NewServer(p *pipeline.Pipeline, language, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"findmindisc",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(p, language)
	for name, entry := range toolRegistry {
		if name == "recommend" && p.Provider() == nil {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport
func Run(p *pipeline.Pipeline, language, version string) error {
	return server.ServeStdio(NewServer(p, language, version))
}
