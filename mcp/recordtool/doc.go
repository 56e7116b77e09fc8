// Package recordtool exposes the record gateway as a Fluxor action service.
// Every method corresponds to one MCP tool (read-record,
// read-multiple-records, update-record, create-record); it binds the
// declared arguments, delegates to a Gateway and renders the outcome as a
// single caller-facing text block.
package recordtool
