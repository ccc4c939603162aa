package extractor

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

var unsafeChars = strings.NewReplacer("'", "", "[", "", "]", "", "{", "", "}", "")

// Sanitize strips quote, bracket and brace characters from s.
func Sanitize(s string) string {
	return unsafeChars.Replace(s)
}

// flattenText renders a model value for a free-text column: strings as-is,
// lists and objects in their bracketed display form, then sanitized.
// ["a","b"] becomes "a, b".
func flattenText(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Sanitize(string(raw))
	}
	if s, ok := v.(string); ok {
		return Sanitize(s)
	}
	var b strings.Builder
	display(&b, v)
	return Sanitize(b.String())
}

func display(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case json.Number:
		b.WriteString(x.String())
	case string:
		quote := "'"
		if strings.Contains(x, "'") && !strings.Contains(x, `"`) {
			quote = `"`
		}
		b.WriteString(quote + x + quote)
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			display(b, e)
		}
		b.WriteByte(']')
	case map[string]any:
		// decoded maps lose key order
		keys := slices.Sorted(maps.Keys(x))
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			display(b, k)
			b.WriteString(": ")
			display(b, x[k])
		}
		b.WriteByte('}')
	}
}
