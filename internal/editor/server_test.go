package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftcast/draftcast/internal/draft"
)

func frame(payload string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(payload), payload)
}

// runServer feeds framed input through a server and returns the emitted
// document events plus everything written to the output stream.
func runServer(t *testing.T, input string) ([]draft.Event, []map[string]interface{}) {
	t.Helper()

	var events []draft.Event
	var out bytes.Buffer
	srv := NewServer(strings.NewReader(input), &out, func(ev draft.Event) {
		events = append(events, ev)
	})

	require.NoError(t, srv.Run(context.Background()))

	var responses []map[string]interface{}
	rest := out.String()
	for rest != "" {
		_, body, found := strings.Cut(rest, "\r\n\r\n")
		require.True(t, found, "unframed output: %q", rest)
		depth := 0
		end := -1
		for i, c := range body {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i + 1
				}
			}
			if end > 0 {
				break
			}
		}
		require.Greater(t, end, 0, "no JSON object in output: %q", body)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body[:end]), &resp))
		responses = append(responses, resp)
		rest = body[end:]
	}
	return events, responses
}

func TestInitializeReturnsCapabilityDescriptor(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	events, responses := runServer(t, input)
	assert.Empty(t, events)
	require.Len(t, responses, 1)

	resp := responses[0]
	assert.Equal(t, float64(1), resp["id"])
	result, ok := resp["result"].(map[string]interface{})
	require.True(t, ok, "missing result: %v", resp)

	caps, ok := result["capabilities"].(map[string]interface{})
	require.True(t, ok)
	sync, ok := caps["textDocumentSync"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, sync["openClose"])
	assert.Equal(t, float64(1), sync["change"], "must demand full-document sync")
	save, ok := sync["save"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, save["includeText"])

	info, ok := result["serverInfo"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "draftcast", info["name"])
}

func TestDocumentLifecycleEvents(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///blog/2026-02-09-00-00-00-a.md","text":"start"}}}`) +
		frame(`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"textDocument":{"uri":"file:///blog/2026-02-09-00-00-00-a.md"},"contentChanges":[{"text":"start typed "}]}}`) +
		frame(`{"jsonrpc":"2.0","method":"textDocument/didSave","params":{"textDocument":{"uri":"file:///blog/2026-02-09-00-00-00-a.md"},"text":"final"}}`)

	events, responses := runServer(t, input)
	assert.Empty(t, responses, "notifications get no reply")
	require.Len(t, events, 3)

	assert.Equal(t, draft.EventOpen, events[0].Kind)
	assert.Equal(t, "/blog/2026-02-09-00-00-00-a.md", events[0].Path)
	assert.Equal(t, "start", events[0].Text)

	assert.Equal(t, draft.EventChange, events[1].Kind)
	assert.Equal(t, "start typed ", events[1].Text)

	assert.Equal(t, draft.EventSave, events[2].Kind)
	assert.Equal(t, "final", events[2].Text)
}

func TestDidChangeTakesLastContentChange(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"textDocument":{"uri":"file:///a.md"},"contentChanges":[{"text":"older"},{"text":"newest "}]}}`)

	events, _ := runServer(t, input)
	require.Len(t, events, 1)
	assert.Equal(t, "newest ", events[0].Text)
}

func TestDidChangeWithoutChangesIsIgnored(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"textDocument":{"uri":"file:///a.md"},"contentChanges":[]}}`)

	events, _ := runServer(t, input)
	assert.Empty(t, events)
}

func TestUnknownRequestGetsNullResult(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","id":"q-7","method":"textDocument/hover","params":{}}`)

	events, responses := runServer(t, input)
	assert.Empty(t, events)
	require.Len(t, responses, 1)
	assert.Equal(t, "q-7", responses[0]["id"])
	assert.Nil(t, responses[0]["result"])
}

func TestUnknownNotificationIsIgnored(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","method":"$/cancelRequest","params":{"id":1}}`)

	events, responses := runServer(t, input)
	assert.Empty(t, events)
	assert.Empty(t, responses)
}

func TestMalformedPayloadSkipped(t *testing.T) {
	input := frame(`{broken json`) +
		frame(`{"jsonrpc":"2.0","method":"textDocument/didSave","params":{"textDocument":{"uri":"file:///a.md"},"text":"still alive"}}`)

	events, _ := runServer(t, input)
	require.Len(t, events, 1, "server must survive malformed payloads")
	assert.Equal(t, "still alive", events[0].Text)
}

func TestShutdownAndExit(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`) +
		frame(`{"jsonrpc":"2.0","method":"textDocument/didSave","params":{"textDocument":{"uri":"file:///a.md"},"text":"after exit"}}`)

	events, responses := runServer(t, input)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0]["result"])
	assert.Empty(t, events, "nothing may be processed after exit")
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"file:///blog/a.md", "/blog/a.md"},
		{"file:///blog/my%20post.md", "/blog/my post.md"},
		{"untitled:Untitled-1", "untitled:Untitled-1"},
		{"/already/a/path.md", "/already/a/path.md"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, uriToPath(tt.uri))
		})
	}
}
