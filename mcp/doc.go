// Package mcp wires the ServiceNow record tools into the MCP protocol
// implementation.  Its central Service type loads configuration, resolves
// credentials, builds the record gateway, converts the record actions into
// MCP tool entries and can expose them over an MCP server.
package mcp
