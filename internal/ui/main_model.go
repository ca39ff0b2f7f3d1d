package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/gubarz/focusflow/internal/llm"
	"github.com/gubarz/focusflow/internal/output"
	"github.com/gubarz/focusflow/internal/parser"
	"github.com/gubarz/focusflow/internal/session"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Messages
// ============================================================================

// replyMsg carries a finished generation back into the model
type replyMsg struct {
	content string
	mode    llm.Mode
	err     error
}

// clockMsg refreshes the "last reply" age in the status line
type clockMsg struct{}

func tickClock() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return clockMsg{}
	})
}

// generate runs the language model off the update loop
func generate(ctx context.Context, gen llm.Generator, input string, mode llm.Mode) tea.Cmd {
	return func() tea.Msg {
		content, err := gen.Generate(ctx, input, mode)
		return replyMsg{content: content, mode: mode, err: err}
	}
}

// ============================================================================
// Chat Model
// ============================================================================

// Options configures the chat session
type Options struct {
	Mode     llm.Mode
	MaxInput int
	SaveDir  string
}

// chatModel is the Bubble Tea model for the chat screen
type chatModel struct {
	width     int
	height    int
	textInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	quitting  bool

	session   *session.Session
	generator llm.Generator
	clipboard output.Clipboard
	saveDir   string
	maxInput  int

	generating bool
	cancel     context.CancelFunc
	status     string
	err        error
}

// newChatModel creates a chatModel talking to gen
func newChatModel(gen llm.Generator, clip output.Clipboard, opts Options) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask FocusFlow... (enter to send)"
	ti.Focus()
	ti.CharLimit = opts.MaxInput
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	mode := opts.Mode
	if mode == "" {
		mode = llm.Brainstorm
	}

	m := chatModel{
		textInput: ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		session:   session.New(mode),
		generator: gen,
		clipboard: clip,
		saveDir:   opts.SaveDir,
		maxInput:  opts.MaxInput,
	}
	m.refreshContent()
	return m
}

// Init implements tea.Model
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickClock())
}

// Update implements tea.Model
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = maxInt(msg.Width-4, 10)
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case replyMsg:
		return m.handleReply(msg), nil
	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case clockMsg:
		return m, tickClock()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleKey processes chat keybindings. Keys it does not claim go to the input.
func (m *chatModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		if m.cancel != nil {
			m.cancel()
		}
		return tea.Quit, true
	case "enter":
		return m.send(), true
	case "tab":
		m.session.Mode = m.session.Mode.Next()
		m.status = "Mode: " + string(m.session.Mode)
	case "ctrl+y":
		m.copyAll()
	case "ctrl+k":
		m.copyLast()
	case "ctrl+s":
		m.save()
	case "ctrl+l":
		m.session.Clear()
		m.err = nil
		m.status = "Cleared"
		m.refreshContent()
	case "pgup":
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
	case "pgdown":
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
	default:
		return nil, false
	}
	return nil, true
}

// send validates the input and starts a generation
func (m *chatModel) send() tea.Cmd {
	if m.generating {
		return nil
	}

	input := m.textInput.Value()
	if err := llm.ValidateInput(input, m.maxInput); err != nil {
		if !errors.Is(err, llm.ErrEmptyInput) {
			m.err = err
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.generating = true
	m.err = nil
	m.status = ""
	m.textInput.Reset()

	log.Debug().Str("mode", string(m.session.Mode)).Int("len", len(input)).Msg("sending message")
	return tea.Batch(m.spinner.Tick, generate(ctx, m.generator, input, m.session.Mode))
}

func (m chatModel) handleReply(msg replyMsg) chatModel {
	m.generating = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if msg.err != nil {
		log.Error().Err(msg.err).Msg("generation failed")
		m.err = msg.err
		return m
	}

	m.session.AddAs(msg.content, msg.mode)
	m.refreshContent()
	m.viewport.GotoBottom()
	return m
}

func (m *chatModel) copyAll() {
	if m.session.Len() == 0 {
		m.status = "Nothing to copy"
		return
	}
	if err := m.clipboard.Copy(m.session.CopyText()); err != nil {
		m.err = err
		return
	}
	m.status = fmt.Sprintf("Copied %d messages", m.session.Len())
}

func (m *chatModel) copyLast() {
	last, ok := m.session.Last()
	if !ok {
		m.status = "Nothing to copy"
		return
	}
	if err := m.clipboard.Copy(last.Content); err != nil {
		m.err = err
		return
	}
	m.status = "Copied last response"
}

func (m *chatModel) save() {
	path, err := m.session.SaveFile(m.saveDir)
	if err != nil {
		m.err = err
		return
	}
	m.status = "Saved " + path
}

// ============================================================================
// Layout
// ============================================================================

// chromeLines is the header, divider, status and input rows around the viewport
const chromeLines = 4

func (m *chatModel) resize() {
	m.viewport.Width = maxInt(m.width, 20)
	m.viewport.Height = maxInt(m.height-chromeLines, 3)
	m.refreshContent()
}

// refreshContent re-renders every message at the current width
func (m *chatModel) refreshContent() {
	if m.session.Len() == 0 {
		m.viewport.SetContent(styles.Dim.Render("No messages yet. Press tab to pick a mode, then type a message."))
		return
	}

	renderer := styles.Terminal(maxInt(m.viewport.Width-2, 20))

	b := getBuilder()
	defer putBuilder(b)
	for i, msg := range m.session.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(styles.Meta.Render("[" + msg.Mode.Label() + "] " + msg.Timestamp.Format(time.Kitchen)))
		b.WriteString("\n")
		b.WriteString(renderer.Render(parser.Parse(msg.Content)))
	}
	m.viewport.SetContent(b.String())
}

// View implements tea.Model
func (m chatModel) View() string {
	if m.quitting {
		return ""
	}

	width := maxInt(m.width, 40)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

func (m chatModel) renderHeader() string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Title.Render("FocusFlow"))
	b.WriteString(" ")
	for _, mode := range llm.Modes {
		style := styles.Mode
		if mode == m.session.Mode {
			style = styles.ActiveMode
		}
		b.WriteString(style.Render(string(mode)))
	}
	return b.String()
}

func (m chatModel) renderStatus() string {
	parts := []string{
		styles.Dim.Render(fmt.Sprintf("  %d/%d", utf8.RuneCountInString(m.textInput.Value()), m.maxInput)),
	}

	if m.generating {
		parts = append(parts, m.spinner.View()+"generating")
	} else if last, ok := m.session.Last(); ok {
		parts = append(parts, styles.Dim.Render("last reply "+humanize.Time(last.Timestamp)))
	}

	switch {
	case m.err != nil:
		parts = append(parts, styles.Error.Render(m.err.Error()))
	case m.status != "":
		parts = append(parts, m.status)
	default:
		parts = append(parts, styles.Dim.Render("tab mode • ctrl+y copy all • ctrl+k copy last • ctrl+s save • esc exit"))
	}

	return strings.Join(parts, " • ")
}

// ============================================================================
// Helpers
// ============================================================================

// maxInt returns the larger of a and b
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
