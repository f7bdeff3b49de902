package fragment

// Extract returns every top-level JSON fragment found in text, in text order.
//
// The scan tracks string literals and bracket depth; a candidate span runs from
// the opening bracket at depth 0 to the matching close. Spans that fail to parse
// are rescanned without their leading delimiter, so fragments nested inside
// non-JSON syntax (JS object literals, function bodies) are still found.
// Extract never fails: unparsable text is skipped.
func Extract(text string) []Node {
	nodes, _ := ExtractWithSkipped(text)
	return nodes
}

// ExtractWithSkipped is Extract that also reports how many candidate spans
// failed to parse, nested retries included.
func ExtractWithSkipped(text string) ([]Node, int) {
	var (
		out     []Node
		skipped int
	)
	scan(text, func(span string) {
		if n, err := Parse([]byte(span)); err == nil {
			out = append(out, n)
			return
		}
		skipped++
		inner, s := ExtractWithSkipped(span[1:])
		out = append(out, inner...)
		skipped += s
	})
	return out, skipped
}

// scan calls emit for every balanced bracket span at depth 0.
func scan(text string, emit func(span string)) {
	var (
		inString bool
		escaped  bool
		depth    int
		start    int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				emit(text[start : i+1])
			}
		}
	}
}
