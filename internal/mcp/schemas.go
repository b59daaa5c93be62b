package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchPatternTool returns the tool definition for search_pattern
func searchPatternTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_pattern",
		Description: "Find all non-overlapping matches of a regex pattern in a text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Regex pattern: literals, ., character classes, groups, backrefs, quantifiers (greedy and lazy), anchors",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to search",
				},
			},
			Required: []string{"pattern", "text"},
		},
	}
}

// searchSemanticTool returns the tool definition for search_semantic
func searchSemanticTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_semantic",
		Description: "Rank the words of a text by embedding similarity to a keyword",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"keyword": map[string]interface{}{
					"type":        "string",
					"description": "Concept to search for (e.g. 'happy')",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text whose words are ranked against the keyword",
				},
				"top_n": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches to return (1-50)",
					"default":     5,
					"minimum":     1,
					"maximum":     50,
				},
			},
			Required: []string{"keyword", "text"},
		},
	}
}

// getHistoryTool returns the tool definition for get_history
func getHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_history",
		Description: "Query the search log: recent searches and most-used patterns",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of recent entries to return (1-200)",
					"default":     10,
					"minimum":     1,
					"maximum":     200,
				},
				"top_patterns": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the most frequently searched patterns",
					"default":     false,
				},
			},
		},
	}
}
