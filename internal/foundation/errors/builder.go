package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category with the category's default severity.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	severity, ok := defaultSeverity[category]
	if !ok {
		severity = SeverityError
	}
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: severity,
		message:  message,
	}}
}

// WrapError starts an error of category that wraps err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.With(key, value)
	return b
}

// Fatal marks the error as stopping the process.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Warning marks the error as non-fatal.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }
func CompileError(message string) *ErrorBuilder    { return NewError(CategoryCompile, message) }
func RenderError(message string) *ErrorBuilder     { return NewError(CategoryRender, message) }
func LintError(message string) *ErrorBuilder       { return NewError(CategoryLint, message) }
func BuildError(message string) *ErrorBuilder      { return NewError(CategoryBundle, message) }
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }
func ServerError(message string) *ErrorBuilder     { return NewError(CategoryServer, message) }
func WatchError(message string) *ErrorBuilder      { return NewError(CategoryWatch, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }
