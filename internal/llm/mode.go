package llm

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects what the assistant is asked to do with the input
type Mode string

const (
	Brainstorm Mode = "brainstorm"
	Summarize  Mode = "summarize"
	Transform  Mode = "transform"
)

// Modes lists every mode in cycling order
var Modes = []Mode{Brainstorm, Summarize, Transform}

// ErrUnknownMode is returned by ParseMode for names outside Modes
var ErrUnknownMode = errors.New("unknown mode")

// ParseMode parses a mode name, case-insensitively
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownMode, "%q", s)
}

// Next returns the mode after m, wrapping around
func (m Mode) Next() Mode {
	for i, known := range Modes {
		if m == known {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Brainstorm
}

// Task is the instruction line sent for this mode
func (m Mode) Task() string {
	switch m {
	case Brainstorm:
		return "Brainstorm ideas"
	case Summarize:
		return "Summarize the content"
	default:
		return "Rewrite the content in a creative tone"
	}
}

// Label is the upper-case tag used in copied transcripts
func (m Mode) Label() string {
	return strings.ToUpper(string(m))
}
