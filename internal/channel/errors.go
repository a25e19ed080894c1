package channel

import "fmt"

// Error codes. None of these conditions is fatal to the host process; every
// failure degrades to "streaming paused".
const (
	// CodeConnection: the socket could not be opened. Retried lazily on
	// the next Join or Push.
	CodeConnection = "CONNECTION_FAILED"
	// CodeChannel: the server rejected the join or dropped the topic.
	CodeChannel = "CHANNEL_ERROR"
	// CodeDropped: a push was attempted while not joined; the content was
	// discarded.
	CodeDropped = "DROPPED_SEND"
)

// Error is a classified channel failure
type Error struct {
	Code    string
	Message string
	Details string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// NewError creates a classified channel error
func NewError(code, message, details string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}
