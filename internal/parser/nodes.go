package parser

import "strings"

// Inline is a node inside a block's text: Text, Bold, Italic, Code or Link.
type Inline interface {
	inline()
}

// Text is a run of literal characters
type Text struct {
	Value string
}

// Bold is a **strong** span
type Bold struct {
	Children []Inline
}

// Italic is a *emphasis* span
type Italic struct {
	Children []Inline
}

// Code is an inline `code` span. Value is never re-parsed.
type Code struct {
	Value string
}

// Link is a [label](url) span
type Link struct {
	Label []Inline
	URL   string
}

func (Text) inline()   {}
func (Bold) inline()   {}
func (Italic) inline() {}
func (Code) inline()   {}
func (Link) inline()   {}

// Block is a top-level unit of a parsed document.
type Block interface {
	block()
}

// Heading is a level 1-3 header line
type Heading struct {
	Level  int
	Inline []Inline
}

// Paragraph is a single non-empty line of text
type Paragraph struct {
	Inline []Inline
}

// List is a run of consecutive items of the same kind. Items are numbered
// by position when rendered; source digits are not kept.
type List struct {
	Ordered bool
	Items   [][]Inline
}

// CodeBlock holds the raw lines between two fences
type CodeBlock struct {
	Language string
	Lines    []string
}

// Blockquote is a single "> " line
type Blockquote struct {
	Inline []Inline
}

// HorizontalRule is a --- or *** line
type HorizontalRule struct{}

// Spacer marks a blank-line gap between blocks
type Spacer struct{}

func (Heading) block()        {}
func (Paragraph) block()      {}
func (List) block()           {}
func (CodeBlock) block()      {}
func (Blockquote) block()     {}
func (HorizontalRule) block() {}
func (Spacer) block()         {}

// PlainText concatenates the visible text of inline nodes, dropping all styling.
// Link URLs are not included.
func PlainText(nodes []Inline) string {
	var b strings.Builder
	writePlain(&b, nodes)
	return b.String()
}

func writePlain(b *strings.Builder, nodes []Inline) {
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			b.WriteString(n.Value)
		case Code:
			b.WriteString(n.Value)
		case Bold:
			writePlain(b, n.Children)
		case Italic:
			writePlain(b, n.Children)
		case Link:
			writePlain(b, n.Label)
		}
	}
}
