// Package errors provides the classified error primitives used across assetbuilder.
//
// Every stage failure is a ClassifiedError whose category names the failing concern
// (compile, render, lint, bundle). The CLI adapter turns categories into exit codes.
//
// Example usage:
//
//	err := errors.CompileError("sass compilation failed").
//		WithContext("file", entry).
//		WithCause(cause).
//		Build()
package errors
