package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	go_openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in       string
		expected Mode
		wantErr  bool
	}{
		{"brainstorm", Brainstorm, false},
		{"Summarize", Summarize, false},
		{" transform ", Transform, false},
		{"translate", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestModeCycle(t *testing.T) {
	assert.Equal(t, Summarize, Brainstorm.Next())
	assert.Equal(t, Transform, Summarize.Next())
	assert.Equal(t, Brainstorm, Transform.Next())
	assert.Equal(t, Brainstorm, Mode("bogus").Next())
}

func TestModeTask(t *testing.T) {
	assert.Equal(t, "Brainstorm ideas", Brainstorm.Task())
	assert.Equal(t, "Summarize the content", Summarize.Task())
	assert.Equal(t, "Rewrite the content in a creative tone", Transform.Task())
	assert.Equal(t, "SUMMARIZE", Summarize.Label())
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("my essay", Summarize)
	assert.True(t, strings.HasPrefix(p, "You are FocusFlow"))
	assert.True(t, strings.HasSuffix(p, "\n\nInput: my essay\nTask: Summarize the content"))
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, ValidateInput("hello", 1000))
	assert.ErrorIs(t, ValidateInput("", 1000), ErrEmptyInput)
	assert.ErrorIs(t, ValidateInput(" \n\t", 1000), ErrEmptyInput)
	assert.ErrorIs(t, ValidateInput(strings.Repeat("a", 1001), 1000), ErrInputTooLong)

	// limit counts characters, not bytes
	assert.NoError(t, ValidateInput(strings.Repeat("é", 1000), 1000))
	// no limit
	assert.NoError(t, ValidateInput(strings.Repeat("a", 5000), 0))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Settings{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func completionServer(t *testing.T, content string, check func(req go_openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req go_openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}

		resp := go_openai.ChatCompletionResponse{
			ID:    "test-id",
			Model: req.Model,
			Choices: []go_openai.ChatCompletionChoice{
				{Message: go_openai.ChatCompletionMessage{Role: go_openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
}

func TestClientGenerate(t *testing.T) {
	server := completionServer(t, "## Ideas\n- one", func(req go_openai.ChatCompletionRequest) {
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, go_openai.ChatMessageRoleUser, req.Messages[0].Role)
		assert.Equal(t, BuildPrompt("topic", Brainstorm), req.Messages[0].Content)
	})
	defer server.Close()

	c, err := NewClient(Settings{APIKey: "test-key", BaseURL: server.URL + "/v1/", Model: "test-model"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "topic", Brainstorm)
	require.NoError(t, err)
	assert.Equal(t, "## Ideas\n- one", out)
}

func TestClientEmptyCompletion(t *testing.T) {
	server := completionServer(t, "", nil)
	defer server.Close()

	c, err := NewClient(Settings{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "x", Transform)
	require.NoError(t, err)
	assert.Equal(t, NoResponse, out)
}

func TestClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	c, err := NewClient(Settings{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "x", Brainstorm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestClientCancelled(t *testing.T) {
	server := completionServer(t, "late", nil)
	defer server.Close()

	c, err := NewClient(Settings{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Generate(ctx, "x", Brainstorm)
	assert.ErrorIs(t, err, context.Canceled)
}
