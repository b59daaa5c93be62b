// Package mcp implements the Model Context Protocol (MCP) server for deepgrep.
//
// The server exposes three tools to AI assistants:
//   - search_pattern: find all matches of a regex pattern in a text
//   - search_semantic: rank the words of a text against a keyword by
//     embedding similarity
//   - get_history: query the search log
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server reads requests on stdin and writes responses to stdout, so it
// integrates with any MCP-compatible client.
//
// # Basic Usage
//
// The server is typically started via the serve command:
//
//	deepgrep serve
//
// # Tool: search_pattern
//
//	Request:
//	{
//	  "name": "search_pattern",
//	  "arguments": {
//	    "pattern": "(\\w+) \\1",
//	    "text": "say hello hello world"
//	  }
//	}
//
//	Response:
//	{
//	  "pattern": "(\\w+) \\1",
//	  "match_count": 1,
//	  "matches": [
//	    {"text": "hello hello", "start": 4, "end": 15, "groups": [...]}
//	  ]
//	}
//
// # Tool: search_semantic
//
//	Request:
//	{
//	  "name": "search_semantic",
//	  "arguments": {"keyword": "happy", "text": "a joyful morning", "top_n": 3}
//	}
//
//	Response:
//	{
//	  "keyword": "happy",
//	  "match_count": 1,
//	  "matches": [{"word": "joyful", "similarity": 0.81}]
//	}
//
// # Tool: get_history
//
//	Request:
//	{
//	  "name": "get_history",
//	  "arguments": {"limit": 10, "top_patterns": true}
//	}
//
// # Error Mapping
//
// Engine failures are translated into JSON-RPC errors:
//
//   - malformed or empty pattern → -32602 (invalid params), with the
//     syntax error position and reason in the data field
//   - step budget exhausted → -32001 (pattern timeout)
//   - embedding provider failure → -32002
//   - anything else → -32603 (internal error)
//
// Every successful search is logged to the history store; a history write
// failure never fails the search that produced it.
package mcp
