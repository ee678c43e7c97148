package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// NewFormatter returns the formatter for the configured format name.
func NewFormatter(format string, useColor bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTextFormatter(useColor), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown lint format %q", format)
	}
}

// TextFormatter formats results in the stylish layout: issues grouped under
// their file, followed by a summary line.
type TextFormatter struct {
	useColor bool
	file     lipgloss.Style
	errStyle lipgloss.Style
	warn     lipgloss.Style
	dim      lipgloss.Style
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor bool) *TextFormatter {
	return &TextFormatter{
		useColor: useColor,
		file:     lipgloss.NewStyle().Underline(true),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#636B78")),
	}
}

func (f *TextFormatter) render(s lipgloss.Style, text string) string {
	if !f.useColor {
		return text
	}
	return s.Render(text)
}

// Format outputs results in human-readable text format. Nothing is written
// when there are no issues.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	if len(result.Issues) == 0 {
		return nil
	}

	// Group issues by file, keeping first-seen order
	var order []string
	byFile := make(map[string][]Issue)
	for _, issue := range result.Issues {
		if _, seen := byFile[issue.FilePath]; !seen {
			order = append(order, issue.FilePath)
		}
		byFile[issue.FilePath] = append(byFile[issue.FilePath], issue)
	}

	for _, path := range order {
		if _, err := fmt.Fprintln(w, f.render(f.file, path)); err != nil {
			return err
		}
		for _, issue := range byFile[path] {
			if err := f.formatIssue(w, issue); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	errorCount := result.ErrorCount()
	warningCount := result.WarningCount()
	total := errorCount + warningCount
	summary := fmt.Sprintf("✖ %d problem%s (%d error%s, %d warning%s)",
		total, pluralize(total), errorCount, pluralize(errorCount), warningCount, pluralize(warningCount))
	style := f.warn
	if errorCount > 0 {
		style = f.errStyle
	}
	_, err := fmt.Fprintf(w, "%s\n\n", f.render(style.Bold(true), summary))
	return err
}

// formatIssue formats a single issue line.
func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	sevStyle := f.warn
	if issue.Severity == SeverityError {
		sevStyle = f.errStyle
	}
	pos := fmt.Sprintf("%d:%d", issue.Line, issue.Column)
	_, err := fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		f.render(f.dim, fmt.Sprintf("%-7s", pos)),
		f.render(sevStyle, fmt.Sprintf("%-7s", issue.Severity)),
		strings.TrimSpace(issue.Message),
		f.render(f.dim, issue.Rule))
	return err
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	output := JSONOutput{
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			File:     issue.FilePath,
			Severity: issue.Severity.String(),
			Rule:     issue.Rule,
			Message:  issue.Message,
			Line:     issue.Line,
			Column:   issue.Column,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
