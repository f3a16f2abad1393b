// Package internal holds the Attendly server internals.
//
// The internal tree is organized by responsibility:
//   - api: HTTP handlers, middleware, problem rendering, and routing
//   - domain: business logic per resource (events, requests, users, ...)
//   - storage: Postgres repositories and migrations
//   - stats: the view-statistics collector and its client
//   - audit, config, metrics, sanitize, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
