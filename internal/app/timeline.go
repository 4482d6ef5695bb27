package app

import "github.com/google/uuid"

type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

type MessageState string

const (
	StatePending   MessageState = "pending"
	StateConfirmed MessageState = "confirmed"
	StateFailed    MessageState = "failed"
)

type PayloadKind string

const (
	KindText  PayloadKind = "text"
	KindImage PayloadKind = "image"
)

// Message is one entry in a session timeline. IDs are generated locally for
// optimistic entries; reconciliation replaces them with server-backed rows.
type Message struct {
	ID      string
	Origin  Origin
	Kind    PayloadKind
	Content string
	State   MessageState
	// IsError marks inline error notices rendered in the assistant column,
	// distinct from real replies.
	IsError bool
	// Seq is assigned by the owning timeline and strictly increases.
	Seq uint64
}

// NewLocalID returns an id for an optimistic local message.
func NewLocalID() string {
	return uuid.NewString()
}

// Timeline is the ordered message history for one session. It is append-only
// from the outside; Replace is reserved for history reconciliation.
type Timeline struct {
	msgs    []Message
	nextSeq uint64
}

// Append assigns the next sequence number and stores the message. The stored
// message is returned.
func (t *Timeline) Append(m Message) Message {
	t.nextSeq++
	m.Seq = t.nextSeq
	t.msgs = append(t.msgs, m)
	return m
}

// Replace installs msgs as the timeline's entire contents, renumbering from 1.
func (t *Timeline) Replace(msgs []Message) {
	t.msgs = t.msgs[:0]
	t.nextSeq = 0
	for _, m := range msgs {
		t.Append(m)
	}
}

// MarkState updates the state of the message with the given id. It reports
// whether a message was found.
func (t *Timeline) MarkState(id string, state MessageState) bool {
	for i := range t.msgs {
		if t.msgs[i].ID == id {
			t.msgs[i].State = state
			return true
		}
	}
	return false
}

// Messages returns a copy of the timeline contents.
func (t *Timeline) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

func (t *Timeline) Len() int { return len(t.msgs) }

// Last returns the most recent message, if any.
func (t *Timeline) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}
