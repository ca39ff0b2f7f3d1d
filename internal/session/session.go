// Package session keeps the chat transcript and exports it.
package session

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gubarz/focusflow/internal/llm"
)

// Message is one assistant reply
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Mode      llm.Mode  `json:"mode"`
}

// Session is the ordered list of replies plus the active mode
type Session struct {
	Mode     llm.Mode
	Messages []Message

	// now is swapped in tests
	now func() time.Time
}

// New creates an empty session in mode
func New(mode llm.Mode) *Session {
	return &Session{Mode: mode, now: time.Now}
}

func (s *Session) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Add appends content stamped with the current mode and time
func (s *Session) Add(content string) Message {
	return s.AddAs(content, s.Mode)
}

// AddAs appends content generated in mode, which may differ from the
// session's current mode if it changed while the reply was pending
func (s *Session) AddAs(content string, mode llm.Mode) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: s.clock(),
		Mode:      mode,
	}
	s.Messages = append(s.Messages, msg)
	return msg
}

// Clear drops all messages, keeping the mode
func (s *Session) Clear() {
	s.Messages = nil
}

// Last returns the newest message
func (s *Session) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Len returns the number of messages
func (s *Session) Len() int {
	return len(s.Messages)
}

// CopyText formats every message as "[MODE] time\ncontent", separated by
// horizontal rules. Content is the raw reply text.
func (s *Session) CopyText() string {
	parts := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		parts = append(parts, "["+m.Mode.Label()+"] "+m.Timestamp.Format(time.Kitchen)+"\n"+m.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

type export struct {
	Mode      llm.Mode  `json:"mode"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteJSON writes {mode, messages, timestamp} with two-space indentation
func (s *Session) WriteJSON(w io.Writer) error {
	messages := s.Messages
	if messages == nil {
		messages = []Message{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export{Mode: s.Mode, Messages: messages, Timestamp: s.clock()}); err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return nil
}

// FileName is the dated save file name for t
func FileName(t time.Time) string {
	return "focusflow-session-" + t.Format("2006-01-02") + ".json"
}

// SaveFile writes the session JSON into dir and returns the file path
func (s *Session) SaveFile(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}

	path := filepath.Join(dir, FileName(s.clock()))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}

	if err := s.WriteJSON(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", path)
	}
	return path, nil
}
