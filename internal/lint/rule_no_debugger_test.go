package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoDebuggerRule(t *testing.T) {
	rule := &NoDebuggerRule{}

	tests := []struct {
		name   string
		src    string
		want   int
		line   int
		column int
	}{
		{name: "statement", src: "debugger;\n", want: 1, line: 1, column: 1},
		{name: "inside function", src: "function f() {\n  debugger\n}\n", want: 1, line: 2, column: 3},
		{name: "after if", src: "if (x) debugger;\n", want: 1, line: 1, column: 8},
		{name: "property access", src: "obj.debugger = 1;\n", want: 0},
		{name: "string", src: "var s = 'debugger';\n", want: 0},
		{name: "comment", src: "// debugger\nvar a = 1;\n", want: 0},
		{name: "clean", src: "var a = 1;\n", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := rule.Check("a.js", []byte(tt.src))
			require.Len(t, issues, tt.want)
			if tt.want == 0 {
				return
			}
			assert.Equal(t, "no-debugger", issues[0].Rule)
			assert.Equal(t, "a.js", issues[0].FilePath)
			assert.Equal(t, tt.line, issues[0].Line)
			assert.Equal(t, tt.column, issues[0].Column)
		})
	}
}
