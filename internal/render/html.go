// Package render turns parsed documents into HTML or styled terminal text.
package render

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/gubarz/focusflow/internal/parser"
)

// HTMLOptions controls HTML output
type HTMLOptions struct {
	// Highlight renders code blocks through chroma with inline styles
	Highlight bool
	// CodeStyle is the chroma style name, monokai when empty
	CodeStyle string
}

// HTML renders blocks as semantic HTML. All literal text is escaped.
func HTML(blocks []parser.Block, opts HTMLOptions) string {
	var b strings.Builder
	for _, block := range blocks {
		writeBlockHTML(&b, block, opts)
	}
	return b.String()
}

// InlineHTML renders a single run of inline nodes
func InlineHTML(nodes []parser.Inline) string {
	var b strings.Builder
	writeInlineHTML(&b, nodes)
	return b.String()
}

func writeBlockHTML(b *strings.Builder, block parser.Block, opts HTMLOptions) {
	switch blk := block.(type) {
	case parser.Heading:
		tag := "h" + strconv.Itoa(blk.Level)
		b.WriteString("<" + tag + ">")
		writeInlineHTML(b, blk.Inline)
		b.WriteString("</" + tag + ">\n")
	case parser.Paragraph:
		b.WriteString("<p>")
		writeInlineHTML(b, blk.Inline)
		b.WriteString("</p>\n")
	case parser.List:
		tag := "ul"
		if blk.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">\n")
		for _, item := range blk.Items {
			b.WriteString("<li>")
			writeInlineHTML(b, item)
			b.WriteString("</li>\n")
		}
		b.WriteString("</" + tag + ">\n")
	case parser.CodeBlock:
		writeCodeHTML(b, blk, opts)
	case parser.Blockquote:
		b.WriteString("<blockquote>")
		writeInlineHTML(b, blk.Inline)
		b.WriteString("</blockquote>\n")
	case parser.HorizontalRule:
		b.WriteString("<hr>\n")
	case parser.Spacer:
		b.WriteString(`<div class="spacer"></div>` + "\n")
	}
}

func writeInlineHTML(b *strings.Builder, nodes []parser.Inline) {
	for _, n := range nodes {
		switch n := n.(type) {
		case parser.Text:
			b.WriteString(html.EscapeString(n.Value))
		case parser.Code:
			b.WriteString("<code>" + html.EscapeString(n.Value) + "</code>")
		case parser.Bold:
			b.WriteString("<strong>")
			writeInlineHTML(b, n.Children)
			b.WriteString("</strong>")
		case parser.Italic:
			b.WriteString("<em>")
			writeInlineHTML(b, n.Children)
			b.WriteString("</em>")
		case parser.Link:
			if !SafeURL(n.URL) {
				writeInlineHTML(b, n.Label)
				continue
			}
			b.WriteString(`<a href="` + html.EscapeString(n.URL) + `" target="_blank" rel="noopener noreferrer">`)
			writeInlineHTML(b, n.Label)
			b.WriteString("</a>")
		}
	}
}

// SafeURL reports whether u may be used as a link target: relative, or
// http, https or mailto. Unsafe links render as their label only.
func SafeURL(u string) bool {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

func writeCodeHTML(b *strings.Builder, blk parser.CodeBlock, opts HTMLOptions) {
	code := strings.Join(blk.Lines, "\n")
	if opts.Highlight {
		if out, ok := highlightHTML(code, blk.Language, opts.CodeStyle); ok {
			b.WriteString(`<div class="code-block" data-language="` + html.EscapeString(blk.Language) + `">`)
			b.WriteString(out)
			b.WriteString("</div>\n")
			return
		}
	}

	b.WriteString("<pre><code")
	if blk.Language != "" {
		b.WriteString(` class="language-` + html.EscapeString(blk.Language) + `"`)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(code))
	b.WriteString("</code></pre>\n")
}

// highlightHTML formats code with chroma's HTML formatter. ok is false when
// chroma fails, in which case the caller emits a plain escaped block.
func highlightHTML(code, language, styleName string) (string, bool) {
	iterator, err := tokenise(code, language)
	if err != nil {
		return "", false
	}

	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))

	var buf strings.Builder
	if err := formatter.Format(&buf, chromaStyle(styleName), iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}

// tokenise picks a lexer by name, then by content analysis, then the fallback
func tokenise(code, language string) (chroma.Iterator, error) {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer).Tokenise(nil, code)
}

func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = "monokai"
	}
	style := chromaStyles.Get(name)
	if style == nil {
		style = chromaStyles.Fallback
	}
	return style
}
