package session

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/focusflow/internal/llm"
)

func fixedSession(mode llm.Mode) *Session {
	s := New(mode)
	at := time.Date(2025, 3, 14, 15, 4, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	return s
}

func TestAdd(t *testing.T) {
	s := fixedSession(llm.Brainstorm)

	m := s.Add("ideas")
	assert.Equal(t, "ideas", m.Content)
	assert.Equal(t, llm.Brainstorm, m.Mode)
	_, err := uuid.Parse(m.ID)
	assert.NoError(t, err)

	s.Mode = llm.Summarize
	m2 := s.Add("summary")
	assert.Equal(t, llm.Summarize, m2.Mode)
	assert.NotEqual(t, m.ID, m2.ID)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, m2, last)
	assert.Equal(t, 2, s.Len())

	s.Clear()
	_, ok = s.Last()
	assert.False(t, ok)
	assert.Equal(t, llm.Summarize, s.Mode)
}

func TestCopyText(t *testing.T) {
	s := fixedSession(llm.Brainstorm)
	s.Add("# one\n- **a**")
	s.Mode = llm.Transform
	s.Add("two")

	expected := "[BRAINSTORM] 3:04PM\n# one\n- **a**" +
		"\n\n---\n\n" +
		"[TRANSFORM] 3:04PM\ntwo"
	assert.Equal(t, expected, s.CopyText())

	assert.Equal(t, "", New(llm.Brainstorm).CopyText())
}

func TestWriteJSON(t *testing.T) {
	s := fixedSession(llm.Summarize)
	s.Add("short")

	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))

	assert.Contains(t, buf.String(), "\n  \"mode\": \"summarize\"")

	var got struct {
		Mode     string `json:"mode"`
		Messages []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
			Mode    string `json:"mode"`
		} `json:"messages"`
		Timestamp time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "summarize", got.Mode)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "short", got.Messages[0].Content)
	assert.Equal(t, "summarize", got.Messages[0].Mode)
	assert.True(t, got.Timestamp.Equal(s.clock()))
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fixedSession(llm.Brainstorm).WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"messages": []`)
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := fixedSession(llm.Brainstorm)
	s.Add("saved")

	path, err := s.SaveFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "focusflow-session-2025-03-14.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content": "saved"`)
}
