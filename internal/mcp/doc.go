// Package mcp exposes the error explainer as MCP tools.
//
// The server registers three tools on the MCP SDK
// (github.com/modelcontextprotocol/go-sdk/mcp):
//
//   - resolve_error maps free text to a catalog slug and reports the strategy
//     that matched.
//   - related_errors ranks the records related to a slug.
//   - explain_error returns the full explanation page, falling back to the AI
//     explainer when the catalog has no match.
//
// Run serves the tools over stdio. Connect accepts any transport, which the
// tests use with in-memory transports.
package mcp
