package render

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/gubarz/focusflow/internal/parser"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func plainTerminal(width int) *Terminal {
	t := NewTerminal(DefaultPalette, width)
	t.Highlight = false
	return t
}

func TestTerminalRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "## Title", "Title"},
		{"heading keeps link url", "# See [docs](http://x.dev) and `code`", "See docs (http://x.dev) and code"},
		{"link shows url", "see [go](https://go.dev)", "see go (https://go.dev)"},
		{"bullets", "- a\n* b", "• a\n• b"},
		{"ordered by position", "7. a\n9. b", "1. a\n2. b"},
		{"blockquote bar", "> quoted", "│ quoted"},
		{"spacer is an empty line", "a\n\nb", "a\n\nb"},
		{"inline styles keep text", "**b** *i* `c`", "b i c"},
	}

	r := plainTerminal(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ansi.Strip(r.Render(parser.Parse(tt.input))))
		})
	}
}

func TestTerminalRule(t *testing.T) {
	out := plainTerminal(10).Render(parser.Parse("---"))
	assert.Equal(t, strings.Repeat("─", 10), ansi.Strip(out))

	out = plainTerminal(0).Render(parser.Parse("***"))
	assert.Equal(t, 80, len([]rune(ansi.Strip(out))))
}

func TestTerminalWrap(t *testing.T) {
	out := ansi.Strip(plainTerminal(10).Render(parser.Parse("aaa bbb ccc ddd eee")))

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(line), 10)
	}
}

func TestTerminalCodeBlock(t *testing.T) {
	blocks := parser.Parse("```go\nx := 1\n```")

	out := ansi.Strip(plainTerminal(40).Render(blocks))
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╯")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "x := 1")

	highlighted := NewTerminal(DefaultPalette, 40)
	out = highlighted.Render(blocks)
	assert.Contains(t, ansi.Strip(out), "x := 1")
}

func TestHighlightTerminalFallsBack(t *testing.T) {
	// unknown languages go through content analysis or the fallback lexer
	out := highlightTerminal("plain words", "no-such-language", "no-such-style")
	assert.Equal(t, "plain words", ansi.Strip(out))
}

func TestANSIColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("6"), ANSIColor("36"))
	assert.Equal(t, lipgloss.Color("8"), ANSIColor("90"))
	assert.Equal(t, lipgloss.Color("212"), ANSIColor("212"))
}

func TestGlamourKeepsText(t *testing.T) {
	out := Glamour("# Hello\n\nworld", 40)
	assert.Contains(t, ansi.Strip(out), "Hello")
	assert.Contains(t, ansi.Strip(out), "world")
}
