// Package output delivers a finished reply to stdout, the clipboard or a file.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// ErrNoClipboard is returned when no clipboard tool is installed and there
// is nowhere to print instead
var ErrNoClipboard = errors.New("no clipboard utility available")

// systemClipboard implements Clipboard using atotto/clipboard
type systemClipboard struct {
	fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		if c.fallback == nil {
			return ErrNoClipboard
		}
		// No clipboard tool found, just print
		log.Warn().Msg("clipboard unsupported, printing instead")
		_, err := fmt.Fprintln(c.fallback, text)
		return err
	}
	return errors.Wrap(clipboard.WriteAll(text), "writing clipboard")
}

// SystemClipboard returns the platform clipboard, printing to fallback where
// none is available. A nil fallback turns that case into ErrNoClipboard.
func SystemClipboard(fallback io.Writer) Clipboard {
	return &systemClipboard{fallback: fallback}
}

// ============================================================================
// Output Handling
// ============================================================================

// Mode represents how a finished reply should be handled
type Mode string

const (
	Print Mode = "print"
	Copy  Mode = "copy"
	Save  Mode = "save"
)

// ParseMode maps a name to a Mode, defaulting to Print
func ParseMode(s string) Mode {
	switch Mode(s) {
	case Copy:
		return Copy
	case Save:
		return Save
	default:
		return Print
	}
}

// Handler sends replies to their destination
type Handler struct {
	mode      Mode
	out       io.Writer
	clipboard Clipboard
	saveDir   string
	now       func() time.Time
}

// NewHandler creates a handler writing printed output to out
func NewHandler(mode Mode, out io.Writer, saveDir string) *Handler {
	return &Handler{
		mode:      mode,
		out:       out,
		clipboard: SystemClipboard(out),
		saveDir:   saveDir,
		now:       time.Now,
	}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (h *Handler) WithClipboard(c Clipboard) *Handler {
	h.clipboard = c
	return h
}

// Mode returns the configured mode
func (h *Handler) Mode() Mode {
	return h.mode
}

// Emit prints rendered, or copies or saves raw, according to the mode.
// Copy and save always use the raw markdown.
func (h *Handler) Emit(raw, rendered string) error {
	switch h.mode {
	case Copy:
		if err := h.clipboard.Copy(raw); err != nil {
			return err
		}
		_, err := fmt.Fprintln(h.out, "Copied to clipboard.")
		return err
	case Save:
		path, err := h.save(raw)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(h.out, "Saved %s (%s)\n", path, humanize.Bytes(uint64(len(raw))))
		return err
	default: // print
		_, err := fmt.Fprintln(h.out, rendered)
		return err
	}
}

func (h *Handler) save(raw string) (string, error) {
	dir := h.saveDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}

	path := filepath.Join(dir, "focusflow-"+h.now().Format("2006-01-02-150405")+".md")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	log.Debug().Str("path", path).Int("bytes", len(raw)).Msg("reply saved")
	return path, nil
}
