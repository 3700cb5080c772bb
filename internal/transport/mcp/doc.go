// Package mcp exposes internal/runservice as a set of MCP tools: one
// server.MCPServer instance with tool handlers that format plain-text
// results for an LLM caller.
package mcp
