package draft

// EventKind classifies a document lifecycle event
type EventKind int

const (
	// EventOpen fires when the editor opens a document
	EventOpen EventKind = iota
	// EventChange fires on every document edit
	EventChange
	// EventSave fires when the editor writes the document to disk
	EventSave
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventChange:
		return "change"
	case EventSave:
		return "save"
	default:
		return "unknown"
	}
}

// Event is one document lifecycle event from the editor. Text always holds
// the complete current document, never a diff. Events are consumed once and
// never persisted.
type Event struct {
	Kind EventKind
	Path string
	Text string
}
