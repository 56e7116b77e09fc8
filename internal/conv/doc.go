// Package conv holds the value coercion helpers used when binding MCP tool
// arguments onto typed inputs and rendering optional protocol fields.
package conv
