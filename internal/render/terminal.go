package render

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/gubarz/focusflow/internal/parser"
)

// Palette holds ANSI color codes ("36", "90", or 256-color numbers)
type Palette struct {
	Heading string
	Link    string
	Code    string
	Quote   string
	Dim     string
}

// DefaultPalette matches the config defaults
var DefaultPalette = Palette{
	Heading: "36",
	Link:    "34",
	Code:    "33",
	Quote:   "35",
	Dim:     "90",
}

// Terminal renders documents as ANSI text
type Terminal struct {
	Width     int    // wrap and rule width, no wrapping when <= 0
	CodeStyle string // chroma style for code blocks
	Highlight bool

	H1     lipgloss.Style
	H2     lipgloss.Style
	H3     lipgloss.Style
	Bold   lipgloss.Style
	Italic lipgloss.Style
	Code   lipgloss.Style
	Link   lipgloss.Style
	URL    lipgloss.Style
	Bullet lipgloss.Style
	Quote  lipgloss.Style
	Bar    lipgloss.Style
	Rule   lipgloss.Style
	Badge  lipgloss.Style
	Frame  lipgloss.Style
}

// NewTerminal builds a renderer with styles taken from p
func NewTerminal(p Palette, width int) *Terminal {
	heading := ANSIColor(p.Heading)
	dim := ANSIColor(p.Dim)

	return &Terminal{
		Width:     width,
		CodeStyle: "monokai",
		Highlight: true,
		H1:        lipgloss.NewStyle().Bold(true).Underline(true).Foreground(heading),
		H2:        lipgloss.NewStyle().Bold(true).Foreground(heading),
		H3:        lipgloss.NewStyle().Bold(true),
		Bold:      lipgloss.NewStyle().Bold(true),
		Italic:    lipgloss.NewStyle().Italic(true),
		Code:      lipgloss.NewStyle().Foreground(ANSIColor(p.Code)),
		Link:      lipgloss.NewStyle().Underline(true).Foreground(ANSIColor(p.Link)),
		URL:       lipgloss.NewStyle().Foreground(dim),
		Bullet:    lipgloss.NewStyle().Foreground(heading),
		Quote:     lipgloss.NewStyle().Italic(true).Foreground(ANSIColor(p.Quote)),
		Bar:       lipgloss.NewStyle().Foreground(ANSIColor(p.Quote)),
		Rule:      lipgloss.NewStyle().Foreground(dim),
		Badge:     lipgloss.NewStyle().Bold(true).Foreground(dim).Padding(0, 1),
		Frame:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(0, 1),
	}
}

// Render renders every block, one or more lines each
func (t *Terminal) Render(blocks []parser.Block) string {
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, t.block(block))
	}
	return strings.Join(out, "\n")
}

// Inline renders a run of inline nodes without wrapping
func (t *Terminal) Inline(nodes []parser.Inline) string {
	var b strings.Builder
	t.writeInline(&b, nodes)
	return b.String()
}

func (t *Terminal) block(block parser.Block) string {
	switch blk := block.(type) {
	case parser.Heading:
		style := t.H3
		switch blk.Level {
		case 1:
			style = t.H1
		case 2:
			style = t.H2
		}
		return style.Render(t.Inline(blk.Inline))
	case parser.Paragraph:
		return t.wrap(t.Inline(blk.Inline))
	case parser.List:
		lines := make([]string, 0, len(blk.Items))
		for i, item := range blk.Items {
			marker := "•"
			if blk.Ordered {
				marker = strconv.Itoa(i+1) + "."
			}
			lines = append(lines, t.Bullet.Render(marker)+" "+t.wrap(t.Inline(item)))
		}
		return strings.Join(lines, "\n")
	case parser.CodeBlock:
		return t.codeBlock(blk)
	case parser.Blockquote:
		return t.Bar.Render("│") + " " + t.Quote.Render(t.Inline(blk.Inline))
	case parser.HorizontalRule:
		return t.Rule.Render(strings.Repeat("─", t.ruleWidth()))
	case parser.Spacer:
		return ""
	}
	return ""
}

func (t *Terminal) writeInline(b *strings.Builder, nodes []parser.Inline) {
	for _, n := range nodes {
		switch n := n.(type) {
		case parser.Text:
			b.WriteString(n.Value)
		case parser.Code:
			b.WriteString(t.Code.Render(n.Value))
		case parser.Bold:
			b.WriteString(t.Bold.Render(t.Inline(n.Children)))
		case parser.Italic:
			b.WriteString(t.Italic.Render(t.Inline(n.Children)))
		case parser.Link:
			b.WriteString(t.Link.Render(t.Inline(n.Label)))
			b.WriteString(" ")
			b.WriteString(t.URL.Render("(" + n.URL + ")"))
		}
	}
}

func (t *Terminal) codeBlock(blk parser.CodeBlock) string {
	code := strings.Join(blk.Lines, "\n")
	if t.Highlight {
		code = highlightTerminal(code, blk.Language, t.CodeStyle)
	}

	body := code
	if blk.Language != "" {
		body = t.Badge.Render(blk.Language) + "\n" + code
	}

	frame := t.Frame
	if t.Width > 0 {
		frame = frame.MaxWidth(t.Width)
	}
	return frame.Render(body)
}

func (t *Terminal) wrap(s string) string {
	if t.Width <= 0 {
		return s
	}
	return ansi.Wordwrap(s, t.Width, "")
}

func (t *Terminal) ruleWidth() int {
	if t.Width <= 0 {
		return 80
	}
	return t.Width
}

// highlightTerminal applies terminal256 highlighting, returning code
// unchanged if chroma fails
func highlightTerminal(code, language, styleName string) string {
	iterator, err := tokenise(code, language)
	if err != nil {
		return code
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, chromaStyle(styleName), iterator); err != nil {
		return code
	}
	// lexers with EnsureNL add a trailing newline, possibly followed by a reset
	out := buf.String()
	if strings.Count(out, "\n") > strings.Count(code, "\n") {
		i := strings.LastIndex(out, "\n")
		out = out[:i] + out[i+1:]
	}
	return out
}

// ANSIColor converts ANSI color codes to lipgloss colors
func ANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}
