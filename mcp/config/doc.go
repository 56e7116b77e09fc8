// Package config defines the YAML/JSON configuration model passed to the MCP
// service on startup as well as helpers to load, default and validate it.
package config
