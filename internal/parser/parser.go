// Package parser converts the markdown subset produced by chat models into
// typed block and inline nodes.
package parser

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

const fenceMarker = "```"

var (
	headingRe   = regexp.MustCompile(`^(#{1,3}) `)
	unorderedRe = regexp.MustCompile(`^\s*[•*-]\s`)
	orderedRe   = regexp.MustCompile(`^\s*\d+\.\s`)
)

// Parse converts text into an ordered sequence of blocks. It never fails:
// anything it does not recognize becomes a paragraph.
func Parse(text string) []Block {
	var a assembler
	for {
		line, rest, found := strings.Cut(text, "\n")
		a.line(line)
		if !found {
			break
		}
		text = rest
	}
	return a.finish()
}

// ParseReader parses markdown read from r. Only read errors are returned.
func ParseReader(r io.Reader) ([]Block, error) {
	var a assembler
	// bufio.Reader rather than Scanner: model output may carry very long lines
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		a.line(strings.TrimSuffix(line, "\n"))
		if err == io.EOF {
			break
		}
	}
	return a.finish(), nil
}

// ParseFile parses a single markdown file
func ParseFile(path string) ([]Block, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseReader(file)
}

// assembler holds the per-call state of one forward scan: the blocks emitted
// so far, the list being accumulated and the fence being collected.
type assembler struct {
	blocks []Block
	list   *List
	fence  *CodeBlock
}

func (a *assembler) line(line string) {
	line = strings.TrimSuffix(line, "\r")
	trimmed := strings.TrimSpace(line)

	// Fence delimiter - opens or closes a code block
	if strings.HasPrefix(trimmed, fenceMarker) {
		if a.fence != nil {
			a.flushFence()
			return
		}
		a.flushList()
		a.fence = &CodeBlock{Language: strings.TrimSpace(trimmed[len(fenceMarker):])}
		return
	}

	// Inside code block - raw
	if a.fence != nil {
		a.fence.Lines = append(a.fence.Lines, line)
		return
	}

	if trimmed == "" {
		a.flushList()
		a.spacer()
		return
	}

	if m := headingRe.FindStringSubmatch(line); m != nil {
		a.flushList()
		a.emit(Heading{Level: len(m[1]), Inline: ParseInline(line[len(m[0]):])})
		return
	}

	if rest, ok := strings.CutPrefix(line, "> "); ok {
		a.flushList()
		a.emit(Blockquote{Inline: ParseInline(rest)})
		return
	}

	if trimmed == "---" || trimmed == "***" {
		a.flushList()
		a.emit(HorizontalRule{})
		return
	}

	if loc := unorderedRe.FindStringIndex(line); loc != nil {
		a.item(false, line[loc[1]:])
		return
	}

	if loc := orderedRe.FindStringIndex(line); loc != nil {
		a.item(true, line[loc[1]:])
		return
	}

	a.flushList()
	a.emit(Paragraph{Inline: ParseInline(line)})
}

// item appends to the open list, first closing it if it is of the other kind.
func (a *assembler) item(ordered bool, text string) {
	if a.list != nil && a.list.Ordered != ordered {
		a.flushList()
	}
	if a.list == nil {
		a.list = &List{Ordered: ordered}
	}
	a.list.Items = append(a.list.Items, ParseInline(text))
}

// spacer records a blank-line gap. Leading and repeated gaps are dropped.
func (a *assembler) spacer() {
	n := len(a.blocks)
	if n == 0 {
		return
	}
	if _, ok := a.blocks[n-1].(Spacer); ok {
		return
	}
	a.emit(Spacer{})
}

func (a *assembler) emit(b Block) {
	a.blocks = append(a.blocks, b)
}

func (a *assembler) flushList() {
	if a.list == nil {
		return
	}
	a.emit(*a.list)
	a.list = nil
}

// flushFence emits the open code block. Fences that collected no lines are dropped.
func (a *assembler) flushFence() {
	if a.fence == nil {
		return
	}
	if len(a.fence.Lines) > 0 {
		a.emit(*a.fence)
	}
	a.fence = nil
}

func (a *assembler) finish() []Block {
	a.flushList()
	a.flushFence()
	return a.blocks
}
