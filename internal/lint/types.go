package lint

import "git.home.luguber.info/inful/assetbuilder/internal/foundation"

// Severity indicates the importance level of a diagnostic.
type Severity int

const (
	// SeverityWarning indicates issues that are reported but do not fail the stage.
	SeverityWarning Severity = iota + 1
	// SeverityError indicates issues that fail the lint stage.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// severityOff disables a rule.
const severityOff Severity = 0

var severities = foundation.NewEnum("severity", map[string]Severity{
	"error":   SeverityError,
	"warning": SeverityWarning,
	"off":     severityOff,
})

// ParseSeverity converts a configured severity. ok is false for "off".
func ParseSeverity(s string) (sev Severity, ok bool, err error) {
	sev, err = severities.Parse(s)
	if err != nil {
		return 0, false, err
	}
	return sev, sev != severityOff, nil
}

// Issue represents a single diagnostic found in a file.
type Issue struct {
	FilePath string   // Path as matched by the input pattern
	Severity Severity // Issue severity level
	Rule     string   // Rule identifier (e.g., "no-debugger")
	Message  string   // Brief description of the issue
	Line     int      // 1-based line number (0 if unknown)
	Column   int      // 1-based column (0 if unknown)
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int // Total files scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// Rule defines an in-repo lint rule applied to a script source.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check returns the issues found in src, without severity; the linter assigns it.
	Check(filePath string, src []byte) []Issue
}

// Config contains configuration for the linter.
type Config struct {
	// Rules maps rule or diagnostic identifiers to error, warning or off.
	Rules map[string]string
}
