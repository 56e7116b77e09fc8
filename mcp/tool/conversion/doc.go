// Package conversion translates Go action signatures into MCP tool
// metadata.  Input schemas are derived from the input struct: the json tag
// names a property, a missing omitempty makes it required and the
// description tag documents it.
package conversion
