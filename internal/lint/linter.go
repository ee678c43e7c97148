package lint

import (
	"fmt"
	"os"
	"sort"

	"github.com/evanw/esbuild/pkg/api"
)

// ruleSyntax names parser errors, which are always reported as errors.
const ruleSyntax = "syntax"

// Linter checks script files with the esbuild parser plus in-repo rules.
type Linter struct {
	severities map[string]string
	rules      []Rule
}

// NewLinter creates a new linter with the given configuration.
func NewLinter(cfg *Config) *Linter {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Linter{
		severities: cfg.Rules,
		rules: []Rule{
			&NoDebuggerRule{},
		},
	}
}

// LintFiles lints files in order and returns every diagnostic found.
func (l *Linter) LintFiles(files []string) (*Result, error) {
	result := &Result{Issues: []Issue{}}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		result.FilesTotal++
		issues, err := l.LintSource(file, src)
		if err != nil {
			return nil, err
		}
		result.Issues = append(result.Issues, issues...)
	}
	return result, nil
}

// LintSource lints a single source buffer.
func (l *Linter) LintSource(filePath string, src []byte) ([]Issue, error) {
	var issues []Issue

	parsed := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: filePath,
		LogLevel:   api.LogLevelSilent,
	})
	for _, msg := range parsed.Errors {
		issues = append(issues, issueFromMessage(filePath, msg, SeverityError))
	}
	for _, msg := range parsed.Warnings {
		issue := issueFromMessage(filePath, msg, SeverityWarning)
		sev, ok, err := l.severityFor(issue.Rule, SeverityWarning)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		issue.Severity = sev
		issues = append(issues, issue)
	}

	for _, rule := range l.rules {
		sev, ok, err := l.severityFor(rule.Name(), SeverityError)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, issue := range rule.Check(filePath, src) {
			issue.Severity = sev
			issues = append(issues, issue)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Column < issues[j].Column
	})
	return issues, nil
}

// severityFor resolves the configured severity of rule; ok is false when the rule is off.
func (l *Linter) severityFor(rule string, def Severity) (Severity, bool, error) {
	configured, set := l.severities[rule]
	if !set {
		return def, true, nil
	}
	sev, ok, err := ParseSeverity(configured)
	if err != nil {
		return 0, false, fmt.Errorf("rule %s: %w", rule, err)
	}
	return sev, ok, nil
}

func issueFromMessage(filePath string, msg api.Message, sev Severity) Issue {
	rule := msg.ID
	if rule == "" {
		rule = ruleSyntax
	}
	issue := Issue{
		FilePath: filePath,
		Severity: sev,
		Rule:     rule,
		Message:  msg.Text,
	}
	if msg.Location != nil {
		issue.Line = msg.Location.Line
		issue.Column = msg.Location.Column + 1
	}
	return issue
}
