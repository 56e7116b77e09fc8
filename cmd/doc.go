// Package cmd implements the servicenow-mcp command-line interface. Each
// file registers a single sub-command (serve, exec, list-tools, tool,
// credentials); configuration loading and service initialisation shared
// between commands live in shared.go.
package cmd
