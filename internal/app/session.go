package app

import "time"

type ReplyMode string

const (
	ReplyText  ReplyMode = "text"
	ReplyImage ReplyMode = "image"
)

// ParseReplyMode maps a config/flag value onto a reply mode.
func ParseReplyMode(s string) (ReplyMode, bool) {
	switch ReplyMode(s) {
	case ReplyText, ReplyImage:
		return ReplyMode(s), true
	case "":
		return ReplyText, true
	}
	return ReplyText, false
}

// Session is one chat thread. The timeline is owned by the session for its
// whole life; reconciliation mutates it in place, it is never swapped out.
type Session struct {
	ID           string
	Timeline     *Timeline
	ReplyMode    ReplyMode
	LastSyncedAt time.Time

	synced bool
	// epoch increments when the session is switched away from or its history
	// is replaced. In-flight work captures it and re-checks before touching
	// the timeline, which is what keeps late replies out.
	epoch uint64
}

// Epoch returns the current staleness marker for the session.
func (s *Session) Epoch() uint64 { return s.epoch }

func (s *Session) bumpEpoch() { s.epoch++ }

// Synced reports whether the session has ever been reconciled against the
// backend.
func (s *Session) Synced() bool { return s.synced }

// SessionInfo is the display projection of a session. Ordinal is the 1-based
// position in creation order and is never used as an identifier.
type SessionInfo struct {
	ID      string
	Ordinal int
}

// SessionRegistry owns the set of sessions and tracks the active one.
// Everything here runs on the single update loop; no locking.
type SessionRegistry struct {
	sessions    []*Session
	activeID    string
	defaultMode ReplyMode
}

func NewSessionRegistry(defaultMode ReplyMode) *SessionRegistry {
	if defaultMode == "" {
		defaultMode = ReplyText
	}
	return &SessionRegistry{defaultMode: defaultMode}
}

// Create allocates a session with an empty timeline, appends it in creation
// order and makes it active. An empty id gets a locally generated one, so
// creation cannot fail even with the backend unreachable.
func (r *SessionRegistry) Create(id string) *Session {
	if id == "" {
		id = NewLocalID()
	}
	sess := &Session{
		ID:        id,
		Timeline:  &Timeline{},
		ReplyMode: r.defaultMode,
	}
	r.sessions = append(r.sessions, sess)
	r.activeID = sess.ID
	return sess
}

// Adopt registers already-existing backend sessions without creating remote
// state. The first adopted session becomes active when none is.
func (r *SessionRegistry) Adopt(ids []string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := r.Get(id); err == nil {
			continue
		}
		sess := &Session{
			ID:        id,
			Timeline:  &Timeline{},
			ReplyMode: r.defaultMode,
		}
		r.sessions = append(r.sessions, sess)
		if r.activeID == "" {
			r.activeID = id
		}
	}
}

// SwitchTo makes the session with the given id active and returns it.
func (r *SessionRegistry) SwitchTo(id string) (*Session, error) {
	sess, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	r.activeID = id
	return sess, nil
}

// Get looks a session up by id.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	for _, s := range r.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

// Active returns the active session, or nil when no sessions exist.
func (r *SessionRegistry) Active() *Session {
	if r.activeID == "" {
		return nil
	}
	sess, err := r.Get(r.activeID)
	if err != nil {
		return nil
	}
	return sess
}

// ActiveID returns the active session id, or "" when no sessions exist.
func (r *SessionRegistry) ActiveID() string { return r.activeID }

// List returns sessions in creation order with 1-based ordinals.
func (r *SessionRegistry) List() []SessionInfo {
	out := make([]SessionInfo, 0, len(r.sessions))
	for i, s := range r.sessions {
		out = append(out, SessionInfo{ID: s.ID, Ordinal: i + 1})
	}
	return out
}

func (r *SessionRegistry) Len() int { return len(r.sessions) }
