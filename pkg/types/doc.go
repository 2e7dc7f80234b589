// Package types defines the shared data types for the codescout retrieval
// engine: chunks produced by the chunker and search results returned to
// protocol and CLI callers.
//
// Types here carry no behavior beyond validation so that every component
// (chunker, storage, searcher, MCP server) can exchange them without import
// cycles.
package types
