package errors

import "maps"

// ErrorCategory names the concern an error belongs to. It drives the CLI exit code.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Stage failures.
	CategoryCompile ErrorCategory = "compile" // stylesheet compilation
	CategoryRender  ErrorCategory = "render"  // template rendering
	CategoryLint    ErrorCategory = "lint"    // script lint gate
	CategoryBundle  ErrorCategory = "bundle"  // script transpile/concat/minify
	CategoryRun     ErrorCategory = "run"     // aggregate of failed stages

	// Runtime and infrastructure.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryServer     ErrorCategory = "server"
	CategoryWatch      ErrorCategory = "watch"
	CategoryInternal   ErrorCategory = "internal"
)

// IsStageFailure reports whether the category belongs to a pipeline stage.
func (c ErrorCategory) IsStageFailure() bool {
	switch c {
	case CategoryCompile, CategoryRender, CategoryLint, CategoryBundle, CategoryRun:
		return true
	default:
		return false
	}
}

// ExitCode is the process exit status for a failure of this category.
func (c ErrorCategory) ExitCode() int {
	switch c {
	case CategoryValidation:
		return 2
	case CategoryLint:
		return 3
	case CategoryConfig:
		return 7
	case CategoryInternal:
		return 10
	case CategoryCompile, CategoryRender, CategoryBundle, CategoryRun, CategoryFileSystem:
		return 11
	case CategoryServer, CategoryWatch:
		return 12
	default:
		return 1
	}
}

// ErrorSeverity indicates whether an error stops the process.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the process
	SeverityError   ErrorSeverity = "error"   // fails the current stage or run
	SeverityWarning ErrorSeverity = "warning" // reported, execution continues
)

// defaultSeverity is applied by NewError; categories not listed default to SeverityError.
var defaultSeverity = map[ErrorCategory]ErrorSeverity{
	CategoryConfig:     SeverityFatal,
	CategoryValidation: SeverityFatal,
	CategoryServer:     SeverityFatal,
	CategoryWatch:      SeverityFatal,
	CategoryInternal:   SeverityFatal,
}

// ErrorContext carries structured key/value details (file, field, addr...).
type ErrorContext map[string]any

// With returns a copy of c with key set to value.
func (c ErrorContext) With(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}

// String returns the value of key when it holds a string.
func (c ErrorContext) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
