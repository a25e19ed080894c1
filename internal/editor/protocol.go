package editor

import "encoding/json"

// jsonrpcVersion is the only protocol version accepted or emitted
const jsonrpcVersion = "2.0"

// requestMessage is an incoming JSON-RPC request or notification. ID is kept
// raw: the editor may use numbers or strings and gets the same value back.
type requestMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (m *requestMessage) isNotification() bool {
	return len(m.ID) == 0
}

// responseMessage is an outgoing JSON-RPC response
type responseMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
	Error   *responseError  `json:"error,omitempty"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
)

// textDocumentItem identifies a document together with its full content
type textDocumentItem struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

// textDocumentIdentifier identifies a document by URI only
type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

// contentChange carries a full-document replacement; the capability
// descriptor requests full sync, so range fields never appear.
type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange        `json:"contentChanges"`
}

type didSaveParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Text         string                 `json:"text"`
}

// initializeResult is the fixed capability descriptor returned to every
// initialize request: full-document sync on change, text included on save.
type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

type serverCapabilities struct {
	TextDocumentSync textDocumentSyncOptions `json:"textDocumentSync"`
}

type textDocumentSyncOptions struct {
	OpenClose bool        `json:"openClose"`
	Change    int         `json:"change"` // 1 = full document
	Save      saveOptions `json:"save"`
}

type saveOptions struct {
	IncludeText bool `json:"includeText"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
