package render

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing one.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// splitFrontMatter separates YAML front matter (`---` delimited) from the body
// and decodes it. Documents without front matter yield empty data.
func splitFrontMatter(content []byte) (map[string]any, []byte, error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return map[string]any{}, content, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return map[string]any{}, content[start+len(open):], nil
	}
	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, nil, ErrMissingClosingDelimiter
	}

	raw := content[start : start+idx+len(nl)]
	body := content[start+idx+len(closeSeq):]

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("front matter: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, body, nil
}
