package session

// EventKind is the abstract inbound event. Transports classify platform
// text and payloads into one of these before calling the engine.
type EventKind int

const (
	EventAnswer EventKind = iota
	EventStart
	EventCancel
	EventNewQuestion
	EventSurrender
	EventScore
	EventTop
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCancel:
		return "cancel"
	case EventNewQuestion:
		return "new_question"
	case EventSurrender:
		return "surrender"
	case EventScore:
		return "score_request"
	case EventTop:
		return "top"
	default:
		return "answer"
	}
}

type Event struct {
	// ID correlates log lines of one event; generated when empty.
	ID     string
	UserID string
	Kind   EventKind
	Text   string
}

// Keyboard is the quick-reply intent attached to a reply.
type Keyboard int

const (
	// KeyboardUnchanged leaves whatever buttons the client already shows.
	KeyboardUnchanged Keyboard = iota
	KeyboardNone
	KeyboardNewQuestion
	KeyboardAnswer
)

func (k Keyboard) String() string {
	switch k {
	case KeyboardNone:
		return "none"
	case KeyboardNewQuestion:
		return "new_question_menu"
	case KeyboardAnswer:
		return "answer_menu"
	default:
		return "unchanged"
	}
}

// Reply is one outbound message directive.
type Reply struct {
	UserID   string
	Text     string
	Keyboard Keyboard
}
