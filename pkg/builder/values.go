package builder

import (
	"bytes"
	"encoding/json"
)

// valueNone is rendered when an option value was absent upstream. An
// explicit JSON null is rendered as "null" instead: the upstream API
// distinguishes "no default" from "defaults to null".
const valueNone = "none"

// FormatValue renders a raw JSON value compactly for inline use.
func FormatValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return valueNone
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		// Not valid JSON; pass the raw text through rather than drop it.
		return string(raw)
	}
	return buf.String()
}

// FormatValueIndent renders a raw JSON value pretty-printed for use
// inside a code block, so lists and attrsets stay readable.
func FormatValueIndent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return valueNone
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
