// Package editor speaks the editor protocol: JSON-RPC 2.0 with
// Content-Length framing over stdio. It converts textDocument lifecycle
// notifications into document events and answers initialize with a fixed
// capability descriptor; everything else gets a null result.
package editor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/draftcast/draftcast/internal/draft"
	"github.com/draftcast/draftcast/internal/logger"
)

// Version is reported in the initialize response
const Version = "0.2.0"

// errExit stops the serve loop after an exit notification
var errExit = errors.New("exit requested")

// Server reads editor requests from one stream and writes responses to
// another. Document events are handed to the event handler in arrival order;
// the read loop is sequential, so the handler sees at most one event at a
// time.
type Server struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	onEvent func(draft.Event)
}

// NewServer creates a server over the given streams. onEvent receives every
// document lifecycle event; it must not block for long, since it stalls the
// editor stream.
func NewServer(r io.Reader, w io.Writer, onEvent func(draft.Event)) *Server {
	return &Server{
		reader:  bufio.NewReader(r),
		writer:  w,
		onEvent: onEvent,
	}
}

// Run processes messages until the input stream closes, the editor sends
// exit, or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("Editor stream closed")
				return nil
			}
			return fmt.Errorf("editor stream read failed: %w", err)
		}

		if err := s.dispatch(payload); err != nil {
			if errors.Is(err, errExit) {
				logger.Info("Editor requested exit")
				return nil
			}
			// Malformed input is logged and skipped; the stream
			// stays alive.
			logger.Warn("Skipping editor message: %v", err)
		}
	}
}

// readMessage reads one Content-Length framed payload
func (s *Server) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("malformed header %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			contentLength, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length: %w", err)
			}
		}
	}
	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}

	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Server) dispatch(payload []byte) error {
	var msg requestMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("unparseable message: %w", err)
	}

	switch msg.Method {
	case "initialize":
		return s.respond(msg.ID, initializeResult{
			Capabilities: serverCapabilities{
				TextDocumentSync: textDocumentSyncOptions{
					OpenClose: true,
					Change:    1,
					Save:      saveOptions{IncludeText: true},
				},
			},
			ServerInfo: serverInfo{Name: "draftcast", Version: Version},
		})

	case "initialized":
		return nil

	case "shutdown":
		return s.respond(msg.ID, nil)

	case "exit":
		return errExit

	case "textDocument/didOpen":
		var params didOpenParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return fmt.Errorf("bad didOpen params: %w", err)
		}
		s.emit(draft.Event{
			Kind: draft.EventOpen,
			Path: uriToPath(params.TextDocument.URI),
			Text: params.TextDocument.Text,
		})
		return nil

	case "textDocument/didChange":
		var params didChangeParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return fmt.Errorf("bad didChange params: %w", err)
		}
		if len(params.ContentChanges) == 0 {
			return nil
		}
		// Full sync: the last change carries the whole document.
		s.emit(draft.Event{
			Kind: draft.EventChange,
			Path: uriToPath(params.TextDocument.URI),
			Text: params.ContentChanges[len(params.ContentChanges)-1].Text,
		})
		return nil

	case "textDocument/didSave":
		var params didSaveParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return fmt.Errorf("bad didSave params: %w", err)
		}
		s.emit(draft.Event{
			Kind: draft.EventSave,
			Path: uriToPath(params.TextDocument.URI),
			Text: params.Text,
		})
		return nil

	default:
		if msg.isNotification() {
			logger.Debug("Ignoring notification %q", msg.Method)
			return nil
		}
		// Unknown request: reply so the editor doesn't hang on it.
		return s.respond(msg.ID, nil)
	}
}

func (s *Server) emit(ev draft.Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

func (s *Server) respond(id json.RawMessage, result interface{}) error {
	if len(id) == 0 {
		return nil
	}
	resp := responseMessage{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Result:  result,
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err = s.writer.Write(payload)
	return err
}

// uriToPath converts a file URI to a filesystem path. Non-file URIs pass
// through unchanged; slug resolution only needs the final path component.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	path := strings.TrimPrefix(uri, "file://")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return path
}
