// Package logging builds the process logger and masks secrets so that
// credentials never reach log output.
package logging
