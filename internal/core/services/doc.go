// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer pipeline lives here: relationship indexing, document
// synthesis, the vector index lifecycle, intent classification, context
// assembly, deterministic lookups, answer generation and sanitisation.
//
// Services are pure Go with no CGO or external dependencies.
package services
