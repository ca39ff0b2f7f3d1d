package parser

import "strings"

// pair is a delimiter that opens and closes with the same marker.
type pair string

const (
	codePair   pair = "`"
	boldPair   pair = "**"
	italicPair pair = "*"
)

// ParseInline tokenizes a single line of text into inline nodes.
//
// Syntaxes are peeled off in precedence order: code spans first, then bold,
// then italic, then links. Each pass only sees the text the previous pass left
// outside its spans. Unmatched markers are kept as literal text.
func ParseInline(text string) []Inline {
	return codePair.split(text, parseBold, func(s string) Inline {
		return Code{Value: s}
	})
}

func parseBold(s string) []Inline {
	return boldPair.split(s, parseItalic, func(s string) Inline {
		return Bold{Children: parseItalic(s)}
	})
}

func parseItalic(s string) []Inline {
	return italicPair.split(s, parseLinks, func(s string) Inline {
		return Italic{Children: parseLinks(s)}
	})
}

func parseLinks(s string) []Inline {
	var nodes []Inline
	for {
		start, end, labelEnd, ok := findLink(s)
		if !ok {
			break
		}
		if start > 0 {
			nodes = append(nodes, Text{Value: s[:start]})
		}
		nodes = append(nodes, Link{
			Label: []Inline{Text{Value: s[start+1 : labelEnd]}},
			URL:   s[labelEnd+2 : end-1],
		})
		s = s[end:]
	}
	if s != "" {
		nodes = append(nodes, Text{Value: s})
	}
	return nodes
}

// split cuts s at every span delimited by p. Runs between spans go through
// outside, the text inside each span through inside.
func (p pair) split(s string, outside func(string) []Inline, inside func(string) Inline) []Inline {
	var nodes []Inline
	for {
		start, end, ok := p.find(s)
		if !ok {
			return append(nodes, outside(s)...)
		}
		nodes = append(nodes, outside(s[:start])...)
		nodes = append(nodes, inside(s[start+len(p):end-len(p)]))
		s = s[end:]
	}
}

// find returns the bounds of the leftmost non-empty span delimited by p,
// markers included. Within a run of marker characters the rightmost opener
// wins, so "***x***" yields "*", **x**, "*".
func (p pair) find(s string) (start, end int, ok bool) {
	marker := string(p)
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], marker)
		if i < 0 {
			return 0, 0, false
		}
		start = from + i
		for start+len(marker) < len(s) && s[start+len(marker)] == marker[0] {
			start++
		}
		j := strings.Index(s[start+len(marker):], marker)
		if j < 0 {
			// nothing to the right can close, for this opener or any later one
			return 0, 0, false
		}
		if j > 0 {
			return start, start + len(marker) + j + len(marker), true
		}
		from = start + 1
	}
	return 0, 0, false
}

// findLink returns the bounds of the leftmost [label](url) in s along with
// the index of the closing bracket.
func findLink(s string) (start, end, labelEnd int, ok bool) {
	for from := 0; from < len(s); {
		i := strings.IndexByte(s[from:], '[')
		if i < 0 {
			return 0, 0, 0, false
		}
		start = from + i
		j := strings.IndexByte(s[start+1:], ']')
		if j < 0 {
			return 0, 0, 0, false
		}
		labelEnd = start + 1 + j
		if j > 0 && labelEnd+1 < len(s) && s[labelEnd+1] == '(' {
			k := strings.IndexByte(s[labelEnd+2:], ')')
			if k < 0 {
				return 0, 0, 0, false
			}
			if k > 0 {
				return start, labelEnd + 2 + k + 1, labelEnd, true
			}
		}
		// every opener before labelEnd shares this bracket and fails the same way
		from = labelEnd + 1
	}
	return 0, 0, 0, false
}
