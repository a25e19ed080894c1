package channel

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// TopicNamespace prefixes every topic; the full topic is "post:<slug>".
const TopicNamespace = "post"

// Outbound events
const (
	// EventJoin is the topic join handshake
	EventJoin = "phx_join"
	// EventUpdate carries a full draft snapshot
	EventUpdate = "draft update"
)

// Inbound events
const (
	// EventReply acknowledges an outbound frame, correlated by ref
	EventReply = "phx_reply"
	// EventError terminates the current join
	EventError = "phx_error"
)

// statusOK is the reply status that confirms a join
const statusOK = "ok"

// Topic builds the wire topic for a slug
func Topic(slug string) string {
	return TopicNamespace + ":" + slug
}

// Frame is an outbound wire frame. Frames are built immediately before
// transmission and never queued or retried.
type Frame struct {
	Topic   string      `json:"topic"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	Ref     uint64      `json:"ref"`
}

// Encode serializes the frame for the wire
func (f *Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// joinPayload carries the auth token on a join frame
type joinPayload struct {
	Token string `json:"token"`
}

// updatePayload carries the full document content on an update frame
type updatePayload struct {
	Content string `json:"content"`
}

// InboundKind is the closed set of inbound frame variants
type InboundKind int

const (
	// InboundUnknown covers every shape the client does not recognize;
	// handling it is a no-op
	InboundUnknown InboundKind = iota
	// InboundReplyOK is a reply frame with status "ok"
	InboundReplyOK
	// InboundReplyError is a reply frame with any other status
	InboundReplyError
	// InboundChannelError is an explicit error-typed frame
	InboundChannelError
)

func (k InboundKind) String() string {
	switch k {
	case InboundReplyOK:
		return "reply-ok"
	case InboundReplyError:
		return "reply-error"
	case InboundChannelError:
		return "channel-error"
	default:
		return "unknown"
	}
}

// Inbound is a decoded inbound frame
type Inbound struct {
	Kind   InboundKind
	Topic  string
	Ref    uint64
	Status string
	Reason string
}

// DecodeInbound maps raw bytes from the wire onto the closed variant set.
// The server payloads are dynamically shaped, so fields are extracted
// defensively; anything that does not parse as a structured frame comes back
// as InboundUnknown rather than an error, keeping the receive loop alive.
func DecodeInbound(data []byte) Inbound {
	if !gjson.ValidBytes(data) {
		return Inbound{Kind: InboundUnknown}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Inbound{Kind: InboundUnknown}
	}

	in := Inbound{
		Kind:  InboundUnknown,
		Topic: root.Get("topic").String(),
		Ref:   root.Get("ref").Uint(),
	}

	switch root.Get("event").String() {
	case EventReply:
		in.Status = root.Get("payload.status").String()
		if in.Status == statusOK {
			in.Kind = InboundReplyOK
		} else {
			in.Kind = InboundReplyError
			in.Reason = root.Get("payload.response.reason").String()
		}
	case EventError:
		in.Kind = InboundChannelError
		in.Reason = root.Get("payload.reason").String()
	}

	return in
}
