// Package observe provides observability primitives for access-control
// operations.
//
// An operation is anything the service wants to account for as a single
// allow/deny decision: a guard check on a protected route, a signup, a
// signin. Middleware wraps an operation with one span, a set of counters
// and a structured log line, labelled with a reason produced by a
// pluggable Classifier.
//
// The package does no I/O beyond exporter setup and log writes.
package observe
