package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	ErrEmptyInput   = errors.New("input is empty")
	ErrInputTooLong = errors.New("input is too long")
)

const preamble = `You are FocusFlow, an AI assistant designed to help writers, educators, and designers brainstorm, summarize content, and rewrite text in creative tones.

Your job is to understand the user's message and reply accordingly based on their intent.

- If the input is a question or idea, help expand it into structured suggestions.
- If the input is content, you may be asked to summarize or rewrite it in a specific tone.

Always return a helpful, structured, and positive response.

`

// BuildPrompt wraps input in the assistant instructions for mode
func BuildPrompt(input string, mode Mode) string {
	return preamble + "Input: " + input + "\nTask: " + mode.Task()
}

// ValidateInput rejects blank input and input longer than max characters.
// A max of zero or less disables the length check.
func ValidateInput(input string, max int) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}
	if n := utf8.RuneCountInString(input); max > 0 && n > max {
		return errors.Wrapf(ErrInputTooLong, "%d characters, limit is %d", n, max)
	}
	return nil
}

