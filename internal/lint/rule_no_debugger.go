package lint

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// NoDebuggerRule reports debugger statements.
type NoDebuggerRule struct{}

func (r *NoDebuggerRule) Name() string { return "no-debugger" }

// Check scans the token stream. A debugger keyword counts only at a statement
// boundary, so property names and regular expressions are not reported.
func (r *NoDebuggerRule) Check(filePath string, src []byte) []Issue {
	var issues []Issue
	l := js.NewLexer(parse.NewInputBytes(src))
	line, col := 1, 1
	prev := js.SemicolonToken
	newline := false
	for {
		tt, text := l.Next()
		if tt == js.ErrorToken {
			break
		}
		if tt == js.DebuggerToken && (newline || statementBoundary(prev)) {
			issues = append(issues, Issue{
				FilePath: filePath,
				Rule:     r.Name(),
				Message:  "Unexpected 'debugger' statement",
				Line:     line,
				Column:   col,
			})
		}
		if n := bytes.Count(text, []byte{'\n'}); n > 0 {
			line += n
			col = len(text) - bytes.LastIndexByte(text, '\n')
		} else {
			col += len(text)
		}
		switch tt {
		case js.WhitespaceToken, js.CommentToken:
		case js.LineTerminatorToken, js.CommentLineTerminatorToken:
			newline = true
		default:
			prev = tt
			newline = false
		}
	}
	return issues
}

func statementBoundary(tt js.TokenType) bool {
	switch tt {
	case js.SemicolonToken, js.OpenBraceToken, js.CloseBraceToken, js.CloseParenToken, js.ColonToken, js.ElseToken:
		return true
	}
	return false
}
