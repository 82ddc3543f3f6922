package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/flight"
	"github.com/ppiankov/findmindisc/internal/llm"
	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/pipeline"
)

// Error codes carried in tool error payloads
const (
	codeInvalidRequest      = "INVALID_REQUEST"
	codeNotFound            = "NOT_FOUND"
	codeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	codeInternal            = "INTERNAL"
)

// toolError is an error with a code and status for the client
type toolError struct {
	Code      string
	Message   string
	Status    int
	Retryable bool
}

func (e *toolError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *toolError {
	return &toolError{Code: codeInvalidRequest, Message: fmt.Sprintf(format, args...), Status: 400}
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	pipeline *pipeline.Pipeline
	language string // Default for describe_discs
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(p *pipeline.Pipeline, language string) *Handlers {
	if language == "" {
		language = "da"
	}
	return &Handlers{pipeline: p, language: language}
}

// RecommendRequest represents the arguments for recommend.
type RecommendRequest struct {
	Query      string   `json:"query"`
	ShownDiscs []string `json:"shown_discs,omitempty"`
}

// CorrectRequest represents the arguments for correct_answer.
type CorrectRequest struct {
	Answer string `json:"answer"`
}

// SimulateRequest represents the arguments for simulate_flight.
type SimulateRequest struct {
	Disc           string  `json:"disc"`
	Arm            string  `json:"arm,omitempty"`
	ThrowDistanceM float64 `json:"throw_distance_m,omitempty"`
}

// DescribeRequest represents the arguments for describe_discs.
type DescribeRequest struct {
	Discs    []string `json:"discs"`
	Language string   `json:"language,omitempty"`
}

// IntentRequest represents the arguments for extract_intent.
type IntentRequest struct {
	Query string `json:"query"`
}

// LookupRequest represents the arguments for lookup_disc.
type LookupRequest struct {
	Disc string `json:"disc"`
}

// LookupResult is a catalog record with its derived classification
type LookupResult struct {
	Disc      model.DiscRecord     `json:"disc"`
	Category  model.Category       `json:"category"`
	Stability model.Stability      `json:"stability"`
	Arm       model.ArmRequirement `json:"arm_requirement"`
}

// HandleRecommend handles the recommend tool.
func (h *Handlers) HandleRecommend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[RecommendRequest](req)
	if err != nil {
		return errorResult(invalid("%v", err)), nil
	}

	rec, err := h.pipeline.Recommend(ctx, pipeline.Request{Query: r.Query, ShownDiscs: r.ShownDiscs})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(rec)
}

// HandleCorrect handles the correct_answer tool.
func (h *Handlers) HandleCorrect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[CorrectRequest](req)
	if err != nil {
		return errorResult(invalid("%v", err)), nil
	}
	if strings.TrimSpace(r.Answer) == "" {
		return errorResult(invalid("answer is required")), nil
	}
	return successResult(h.pipeline.Correct(r.Answer))
}

// HandleSimulate handles the simulate_flight tool.
func (h *Handlers) HandleSimulate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[SimulateRequest](req)
	if err != nil {
		return errorResult(invalid("%v", err)), nil
	}
	if r.ThrowDistanceM < 0 {
		return errorResult(invalid("throw_distance_m must not be negative")), nil
	}

	if r.Arm != "" {
		arm, err := model.ParseArmSpeed(r.Arm)
		if err != nil {
			return errorResult(invalid("%v", err)), nil
		}
		f, err := h.pipeline.Simulate(r.Disc, arm)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(f)
	}

	d, err := h.pipeline.SimulateAll(r.Disc, int(r.ThrowDistanceM))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(d)
}

// HandleDescribe handles the describe_discs tool.
func (h *Handlers) HandleDescribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[DescribeRequest](req)
	if err != nil {
		return errorResult(invalid("%v", err)), nil
	}
	if len(r.Discs) == 0 {
		return errorResult(invalid("discs is required")), nil
	}
	lang := r.Language
	if lang == "" {
		lang = h.language
	}

	desc := h.pipeline.Describe(r.Discs, lang)
	if len(desc.Discs) == 0 {
		return errorResult(&toolError{
			Code:    codeNotFound,
			Message: fmt.Sprintf("no known disc among %s", strings.Join(desc.Unresolved, ", ")),
			Status:  404,
		}), nil
	}
	return successResult(desc)
}

// HandleIntent handles the extract_intent tool.
func (h *Handlers) HandleIntent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[IntentRequest](req)
	if err != nil {
		return errorResult(invalid("%v", err)), nil
	}
	return successResult(h.pipeline.Intent(r.Query))
}

// HandleLookup handles the lookup_disc tool.
func (h *Handlers) HandleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[LookupRequest](req)
	if err != nil {
		return errorResult(invalid("%v", err)), nil
	}

	c := h.pipeline.Catalog()
	d, err := c.Lookup(r.Disc)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(LookupResult{
		Disc:      d,
		Category:  c.Category(d),
		Stability: d.Stability(),
		Arm:       flight.RequiredArmSpeed(d.Speed),
	})
}

// classify maps pipeline errors to tool errors
func classify(err error) *toolError {
	var te *toolError
	if errors.As(err, &te) {
		return te
	}
	var callErr *llm.CallError
	switch {
	case errors.As(err, &callErr):
		return &toolError{
			Code:      codeProviderUnavailable,
			Message:   callErr.Error(),
			Status:    502,
			Retryable: callErr.Retryable(),
		}
	case errors.Is(err, catalog.ErrNotFound):
		return &toolError{Code: codeNotFound, Message: err.Error(), Status: 404}
	case errors.Is(err, pipeline.ErrEmptyQuery):
		return invalid("query is required")
	}
	return nil
}

// errorResult creates an MCP error result from an error
func errorResult(err error) *mcp.CallToolResult {
	var errorObj map[string]any
	if te := classify(err); te != nil {
		errorObj = map[string]any{
			"code":    te.Code,
			"message": te.Message,
			"status":  te.Status,
		}
		if te.Code == codeProviderUnavailable {
			errorObj["retryable"] = te.Retryable
		}
	} else {
		// Internal details stay in the log
		logging.Error().Err(err).Msg("tool call failed")
		errorObj = map[string]any{
			"code":    codeInternal,
			"message": "an internal error occurred",
			"status":  500,
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(content),
			},
		},
		IsError: true,
	}
}

// successResult creates an MCP success result with JSON data
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
