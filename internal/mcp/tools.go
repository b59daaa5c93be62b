package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vivekkdagar/deepgrep/internal/history"
	"github.com/vivekkdagar/deepgrep/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodePatternTimeout = -32001 // Pattern exceeded the step budget
	ErrorCodeEmbedderFailed = -32002 // Embedding provider unavailable or failing
)

// sourceMCP tags history entries written by this layer
const sourceMCP = "mcp"

// handleSearchPattern handles the search_pattern tool invocation
func (s *Server) handleSearchPattern(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "pattern parameter is required", map[string]interface{}{
			"param":  "pattern",
			"reason": "missing or empty",
		})
	}

	text, ok := args["text"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing",
		})
	}

	matches, err := s.engine.FindAll(pattern, text)
	if err != nil {
		return nil, mapEngineError(err)
	}

	s.logSearch(ctx, pattern, history.ModeRegex, len(matches))

	results := make([]map[string]interface{}, len(matches))
	for i, m := range matches {
		groups := make([]interface{}, len(m.Groups))
		for gi, span := range m.Groups {
			if !span.IsSet() {
				groups[gi] = nil
				continue
			}
			groups[gi] = map[string]interface{}{
				"text":  text[span.Start:span.End],
				"start": span.Start,
				"end":   span.End,
			}
		}
		results[i] = map[string]interface{}{
			"text":   m.Text(text),
			"start":  m.Start,
			"end":    m.End,
			"groups": groups,
		}
	}

	response := map[string]interface{}{
		"pattern":     pattern,
		"match_count": len(matches),
		"matches":     results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSemantic handles the search_semantic tool invocation
func (s *Server) handleSearchSemantic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	keyword, ok := args["keyword"].(string)
	if !ok || keyword == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "keyword parameter is required", map[string]interface{}{
			"param":  "keyword",
			"reason": "missing or empty",
		})
	}

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing or empty",
		})
	}

	topN := getIntDefault(args, "top_n", 0)
	if topN < 0 || topN > 50 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_n must be between 1 and 50", map[string]interface{}{
			"param": "top_n",
			"value": topN,
		})
	}

	matches, err := s.matcher.FindMatches(ctx, text, keyword, topN)
	if err != nil {
		return nil, newMCPError(ErrorCodeEmbedderFailed, "semantic search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logSearch(ctx, keyword, history.ModeSemantic, len(matches))

	results := make([]map[string]interface{}, len(matches))
	for i, m := range matches {
		results[i] = map[string]interface{}{
			"word":       m.Word,
			"similarity": m.Similarity,
		}
	}

	response := map[string]interface{}{
		"keyword":     keyword,
		"match_count": len(matches),
		"matches":     results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetHistory handles the get_history tool invocation
func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > history.MaxEntries {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", history.MaxEntries), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read history", map[string]interface{}{
			"error": err.Error(),
		})
	}

	recent := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		recent[i] = map[string]interface{}{
			"pattern":     e.Pattern,
			"mode":        string(e.Mode),
			"match_count": e.MatchCount,
			"timestamp":   e.Timestamp.Format(time.RFC3339),
		}
	}

	response := map[string]interface{}{
		"count":  len(entries),
		"recent": recent,
	}

	if getBoolDefault(args, "top_patterns", false) {
		top, err := s.history.TopPatterns(ctx, limit)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to read top patterns", map[string]interface{}{
				"error": err.Error(),
			})
		}
		topList := make([]map[string]interface{}, len(top))
		for i, p := range top {
			topList[i] = map[string]interface{}{
				"pattern": p.Pattern,
				"count":   p.Count,
			}
		}
		response["top_patterns"] = topList
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// logSearch records a completed search. History failures never fail the
// search that produced them.
func (s *Server) logSearch(ctx context.Context, pattern string, mode history.Mode, matchCount int) {
	if s.history == nil {
		return
	}
	_ = s.history.Log(ctx, &history.Entry{
		Pattern:    pattern,
		Mode:       mode,
		MatchCount: matchCount,
		Source:     sourceMCP,
		Timestamp:  time.Now().UTC(),
	})
}

// mapEngineError translates engine failures into MCP protocol errors
func mapEngineError(err error) error {
	var syntaxErr *types.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return newMCPError(ErrorCodeInvalidParams, "invalid pattern", map[string]interface{}{
			"position": syntaxErr.Pos,
			"reason":   syntaxErr.Msg,
		})
	case errors.Is(err, types.ErrEmptyPattern):
		return newMCPError(ErrorCodeInvalidParams, "pattern cannot be empty", map[string]interface{}{
			"param": "pattern",
		})
	case errors.Is(err, types.ErrStepLimit):
		return newMCPError(ErrorCodePatternTimeout, "pattern exceeded the step budget", map[string]interface{}{
			"reason": "catastrophic backtracking; simplify the pattern",
		})
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
