// Package syncmap provides the generic, RWMutex guarded name index backing
// the tool registry.
package syncmap
