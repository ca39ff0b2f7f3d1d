package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	copied []string
	err    error
}

func (f *fakeClipboard) Copy(text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, Print, ParseMode("print"))
	assert.Equal(t, Copy, ParseMode("copy"))
	assert.Equal(t, Save, ParseMode("save"))
	assert.Equal(t, Print, ParseMode("exec"))
	assert.Equal(t, Print, ParseMode(""))
}

func TestEmitPrint(t *testing.T) {
	var out bytes.Buffer
	clip := &fakeClipboard{}
	h := NewHandler(Print, &out, "").WithClipboard(clip)

	require.NoError(t, h.Emit("**raw**", "rendered"))
	assert.Equal(t, "rendered\n", out.String())
	assert.Empty(t, clip.copied)
}

func TestEmitCopyUsesRawText(t *testing.T) {
	var out bytes.Buffer
	clip := &fakeClipboard{}
	h := NewHandler(Copy, &out, "").WithClipboard(clip)

	require.NoError(t, h.Emit("**raw**", "rendered"))
	assert.Equal(t, []string{"**raw**"}, clip.copied)
	assert.Contains(t, out.String(), "Copied")
}

func TestEmitCopyError(t *testing.T) {
	var out bytes.Buffer
	h := NewHandler(Copy, &out, "").WithClipboard(&fakeClipboard{err: errors.New("no display")})

	assert.EqualError(t, h.Emit("x", "x"), "no display")
	assert.Empty(t, out.String())
}

func TestEmitSave(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	h := NewHandler(Save, &out, dir)
	h.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	require.NoError(t, h.Emit("# raw", "rendered"))

	path := filepath.Join(dir, "focusflow-2025-01-02-030405.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# raw", string(data))
	assert.Contains(t, out.String(), path)
	assert.Contains(t, out.String(), "5 B")
}
