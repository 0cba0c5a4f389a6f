// Package internal holds the events backend internals.
//
// The internal tree is organized by responsibility:
// - config: environment configuration and logging setup
// - domain: business logic and domain models
// - storage: database access, repositories, and test-database lifecycle
// - metrics: shared Prometheus instrumentation
//
// Code in internal/ is not meant for external import.
package internal
