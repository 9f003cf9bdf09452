package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or answer mode.
	ErrUnsupportedType = errors.New("unsupported type")

	// Startup Errors. These are fatal: no chat can start without data and an index.

	// ErrLoad indicates the data directory is missing or unreadable.
	ErrLoad = errors.New("load error")

	// ErrEmbedding indicates the embedding provider failed to produce vectors.
	ErrEmbedding = errors.New("embedding error")

	// ErrIndex indicates the vector index could not be built.
	ErrIndex = errors.New("index error")

	// Recoverable Errors.

	// ErrParse indicates a collection file could not be decoded.
	// The collection is treated as empty and loading continues.
	ErrParse = errors.New("parse error")

	// ErrIndexNotFound indicates no persisted index exists yet.
	ErrIndexNotFound = errors.New("persisted index not found")

	// ErrIndexIncompatible indicates the persisted index was built with a
	// different model, dimension or document set. It is rebuilt.
	ErrIndexIncompatible = errors.New("persisted index incompatible")

	// ErrGeneration indicates the answer generator failed or timed out.
	// The caller receives an apology instead of an answer.
	ErrGeneration = errors.New("generation error")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ParseError describes a collection file that failed every decode attempt.
type ParseError struct {
	// File is the path of the offending file.
	File string

	// Encodings lists the encodings that were attempted, in order.
	Encodings []string

	// Err is the last decode error.
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (tried %s): %v", e.File, strings.Join(e.Encodings, ", "), e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ParseError as ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
