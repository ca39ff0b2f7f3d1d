package ui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/focusflow/internal/llm"
	"github.com/gubarz/focusflow/internal/output"
)

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	// Check if stdout is a terminal
	// If not (e.g., piped or captured by $()), use /dev/tty
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// Run launches the chat TUI and blocks until the user quits
func Run(gen llm.Generator, opts Options) error {
	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles() // Refresh after getTTY sets up the renderer

	// No printing fallback: stdout belongs to the alt screen
	m := newChatModel(gen, output.SystemClipboard(nil), opts)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithOutput(ttyOut),
		tea.WithInput(ttyIn),
	)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if result, ok := finalModel.(chatModel); ok && result.cancel != nil {
		result.cancel()
	}
	return nil
}
