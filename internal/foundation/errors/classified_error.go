package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
)

// ClassifiedError is an error with a category, a severity and structured context.
// Build one with an ErrorBuilder.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.category, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }

func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }

func (e *ClassifiedError) Message() string { return e.message }

func (e *ClassifiedError) Context() ErrorContext { return e.context }

// Is matches another ClassifiedError with the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// LogAttrs returns the category and context as slog attributes, keys sorted.
func (e *ClassifiedError) LogAttrs() []slog.Attr {
	keys := make([]string, 0, len(e.context))
	for k := range e.context {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("category", string(e.category)))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.context[k]))
	}
	return attrs
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether any ClassifiedError in the tree of err, including
// errors joined with errors.Join, belongs to category.
func HasCategory(err error, category ErrorCategory) bool {
	switch x := err.(type) {
	case nil:
		return false
	case *ClassifiedError:
		if x.category == category {
			return true
		}
		return HasCategory(x.cause, category)
	case interface{ Unwrap() []error }:
		return slices.ContainsFunc(x.Unwrap(), func(inner error) bool {
			return HasCategory(inner, category)
		})
	case interface{ Unwrap() error }:
		return HasCategory(x.Unwrap(), category)
	}
	return false
}

// GetCategory returns the category of the first ClassifiedError in err's chain,
// or CategoryInternal when there is none.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}
