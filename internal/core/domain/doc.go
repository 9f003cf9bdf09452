// Package domain defines the core business entities for assetchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: one raw JSON object from a dataset collection
//   - Dataset: every collection loaded from the data directory
//   - Document: the retrievable text synthesised from a record or summary
//   - IntentSet: the question categories that steer context assembly
//   - Turn: one message of a conversation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
