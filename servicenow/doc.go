// Package servicenow implements the record gateway against the ServiceNow
// Table API.  A Client performs exactly one authenticated HTTP request per
// operation (read, update, create) and normalises the outcome into a Result
// so that callers can render failures as data instead of handling them as
// control flow.
package servicenow
