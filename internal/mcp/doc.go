// Package mcp implements the Model Context Protocol (MCP) server for
// codescout.
//
// The server exposes three tools to AI coding assistants:
//   - index_repo: index a repository's source and docs for hybrid search
//   - search_code: query the index with keyword, semantic or hybrid mode
//   - get_stats: report document, chunk and vector counts
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client -> Server: {"method": "tools/call", "params": {...}}
//	Server -> Client: {"result": {...}}
//
// The server reads MCP messages from stdin and writes responses to stdout,
// which is why all logging goes to stderr.
//
// # Basic Usage
//
// The server is typically started via the serve command:
//
//	codescout serve
//
// # Tool: search_code
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "query": "how are sessions refreshed",
//	    "limit": 10,
//	    "mode": "hybrid"
//	  }
//	}
//
// Results carry the collection, file path, line range, language, fused
// score and the chunk content with its synthesized location header.
package mcp
