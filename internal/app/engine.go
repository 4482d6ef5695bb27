package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine is the conversation session and streaming playback core. All methods
// that mutate sessions or timelines must be called from one goroutine (the UI
// update loop); remote calls are issued off-loop and their results fed back in
// through the Resolve*/Apply* methods, which re-check the session id and epoch
// captured at request time before touching anything.
type Engine struct {
	cfg      Config
	log      *Logger
	client   BackendClient
	registry *SessionRegistry
	playback *PlaybackController
	router   *ModeRouter
	history  *HistorySync
	fetcher  *SuggestionFetcher
	voice    *VoiceManager

	suggestions []string
	// suggestionTurn bumps on every send and switch; a suggestion response
	// from an earlier turn is ignored.
	suggestionTurn uint64

	staleDiscards int
}

func NewEngine(cfg Config, log *Logger, client BackendClient, speech SpeechCapability) *Engine {
	mode, _ := ParseReplyMode(cfg.ReplyMode)
	return &Engine{
		cfg:      cfg,
		log:      log,
		client:   client,
		registry: NewSessionRegistry(mode),
		playback: &PlaybackController{},
		router:   NewModeRouter(client),
		history:  NewHistorySync(client),
		fetcher:  NewSuggestionFetcher(client),
		voice:    NewVoiceManager(speech),
	}
}

// SendRequest describes one outgoing user message. The session id and epoch
// gate the eventual reply: a reply that resolves after the session was
// switched away from or re-synced is discarded.
type SendRequest struct {
	ID        string
	SessionID string
	Epoch     uint64
	Mode      ReplyMode
	Text      string

	// Canned holds a locally synthesized reply; when set no remote call is
	// made.
	Canned *ReplyPayload

	userMsgID string
}

// BeginSend appends the optimistic user message to the active timeline,
// clears any visible suggestions, preempts an unfinished reveal and checks
// the canned-rule table. The returned request is either resolved immediately
// (canned) or handed to Produce off-loop.
func (e *Engine) BeginSend(text string) (*SendRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty message")
	}
	sess := e.registry.Active()
	if sess == nil {
		return nil, ErrNotFound
	}
	e.playback.Cancel(sess.ID)
	e.clearSuggestions()

	user := sess.Timeline.Append(Message{
		ID:      NewLocalID(),
		Origin:  OriginUser,
		Kind:    KindText,
		Content: text,
		State:   StatePending,
	})
	req := &SendRequest{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Epoch:     sess.Epoch(),
		Mode:      sess.ReplyMode,
		Text:      text,
		userMsgID: user.ID,
	}
	if payload, ok := MatchCanned(text); ok {
		req.Canned = &payload
	}
	return req, nil
}

// Produce obtains the reply payload for req. Safe to call off-loop: it only
// talks to the backend.
func (e *Engine) Produce(ctx context.Context, req *SendRequest) (ReplyPayload, error) {
	if req.Canned != nil {
		return *req.Canned, nil
	}
	return e.router.Route(req.Mode).Produce(ctx, req.SessionID, req.Text)
}

// ResolveSend applies the outcome of Produce. Stale results (session switched
// away or re-synced since BeginSend) are silently dropped and counted.
func (e *Engine) ResolveSend(req *SendRequest, payload ReplyPayload, err error) {
	sess, gerr := e.registry.Get(req.SessionID)
	if gerr != nil {
		e.staleDiscards++
		return
	}
	if e.registry.ActiveID() != req.SessionID || sess.Epoch() != req.Epoch {
		e.staleDiscards++
		e.log.Info("stale reply discarded", map[string]interface{}{
			"session": req.SessionID,
			"request": req.ID,
		})
		return
	}
	if err != nil {
		sess.Timeline.MarkState(req.userMsgID, StateFailed)
		sess.Timeline.Append(Message{
			ID:      NewLocalID(),
			Origin:  OriginAssistant,
			Kind:    KindText,
			Content: "Error: " + userFacing(err),
			State:   StateConfirmed,
			IsError: true,
		})
		e.log.Error("send failed", map[string]interface{}{
			"session": req.SessionID,
			"error":   err.Error(),
		})
		return
	}
	sess.Timeline.MarkState(req.userMsgID, StateConfirmed)
	e.playback.Start(req.SessionID, payload)
}

// PlaybackUpdate is the result of one reveal tick.
type PlaybackUpdate struct {
	// Revealing is set while a reveal is in progress; Prefix carries the
	// transient in-progress text for the active session (empty when the
	// job's session is not active — suppressed, not cancelled).
	Revealing bool
	Prefix    string

	// Completed is set on the tick that finished the reveal; Message is the
	// single appended assistant message.
	Completed bool
	Message   *Message

	// Suggestions is non-nil when the completed reply should trigger a
	// follow-up suggestion fetch.
	Suggestions *SuggestionRequest
}

// TickPlayback advances the live reveal by one unit. On the completing tick
// it appends exactly one confirmed assistant message to the job's timeline —
// provided that session is still the active one; a completion for an inactive
// session is discarded as stale.
func (e *Engine) TickPlayback() PlaybackUpdate {
	job, done := e.playback.Step()
	if job == nil {
		return PlaybackUpdate{}
	}
	sess, err := e.registry.Get(job.SessionID)
	if err != nil {
		e.staleDiscards++
		return PlaybackUpdate{}
	}
	active := e.registry.ActiveID() == job.SessionID
	if !done {
		u := PlaybackUpdate{Revealing: true}
		if active {
			u.Prefix = job.Prefix()
		}
		return u
	}
	if !active {
		e.staleDiscards++
		return PlaybackUpdate{}
	}
	msg := sess.Timeline.Append(Message{
		ID:      NewLocalID(),
		Origin:  OriginAssistant,
		Kind:    job.Kind,
		Content: job.FullText(),
		State:   StateConfirmed,
	})
	u := PlaybackUpdate{Completed: true, Message: &msg}
	if job.Kind == KindText {
		u.Suggestions = &SuggestionRequest{SessionID: sess.ID, Turn: e.suggestionTurn}
		if e.cfg.SpeakReplies {
			_ = e.voice.Speak(context.Background(), msg.Content)
		}
	}
	return u
}

// CancelPlayback aborts the active session's reveal without appending
// anything. Idempotent when nothing is revealing.
func (e *Engine) CancelPlayback() {
	if id := e.registry.ActiveID(); id != "" {
		e.playback.Cancel(id)
	}
}

// Revealing reports whether a reveal is in progress.
func (e *Engine) Revealing() bool { return e.playback.Live() }

// SyncRequest identifies one reconcile pass for a session.
type SyncRequest struct {
	SessionID string
	Epoch     uint64
}

// SwitchSession activates the session with the given id. A live reveal for
// the previous session is cancelled and its partial text discarded. The
// returned request, when non-nil, asks the caller to fetch history for the
// new session: authoritative history wins over local state on every switch.
func (e *Engine) SwitchSession(id string) (*SyncRequest, error) {
	if e.registry.ActiveID() == id {
		return nil, nil
	}
	if prev := e.registry.Active(); prev != nil {
		e.playback.Cancel(prev.ID)
		prev.bumpEpoch()
	}
	sess, err := e.registry.SwitchTo(id)
	if err != nil {
		return nil, err
	}
	e.clearSuggestions()
	return &SyncRequest{SessionID: sess.ID, Epoch: sess.Epoch()}, nil
}

// NewSession registers a freshly created chat and activates it. An empty id
// means the backend call failed; the session still comes up with a local id
// so creation never fails client-side.
func (e *Engine) NewSession(id string) *Session {
	if prev := e.registry.Active(); prev != nil {
		e.playback.Cancel(prev.ID)
		prev.bumpEpoch()
	}
	e.clearSuggestions()
	sess := e.registry.Create(id)
	if id != "" {
		// A brand new chat has no history to reconcile; creating it on the
		// backend counts as its first sync.
		sess.synced = true
		sess.LastSyncedAt = time.Now()
	}
	return sess
}

// AdoptSessions registers backend chats at startup and returns a sync request
// for the session that became active, if any.
func (e *Engine) AdoptSessions(ids []string) *SyncRequest {
	e.registry.Adopt(ids)
	sess := e.registry.Active()
	if sess == nil {
		return nil
	}
	return &SyncRequest{SessionID: sess.ID, Epoch: sess.Epoch()}
}

// FetchHistory runs the reconcile fetch for req. Safe to call off-loop.
func (e *Engine) FetchHistory(ctx context.Context, req *SyncRequest) ([]HistoryRecord, error) {
	return e.history.Fetch(ctx, req.SessionID)
}

// ApplyHistory installs fetched history. A failed fetch leaves the timeline
// untouched and is returned for display; a result for a session that has
// moved on since the request is dropped.
func (e *Engine) ApplyHistory(req *SyncRequest, records []HistoryRecord, err error) error {
	sess, gerr := e.registry.Get(req.SessionID)
	if gerr != nil {
		e.staleDiscards++
		return nil
	}
	if sess.Epoch() != req.Epoch {
		e.staleDiscards++
		return nil
	}
	if err != nil {
		e.log.Error("history sync failed", map[string]interface{}{
			"session": req.SessionID,
			"error":   err.Error(),
		})
		return err
	}
	e.history.Apply(sess, records)
	return nil
}

// SuggestionRequest identifies one follow-up suggestion fetch.
type SuggestionRequest struct {
	SessionID string
	Turn      uint64
}

// FetchSuggestions runs the suggestion fetch for req. Safe to call off-loop.
func (e *Engine) FetchSuggestions(ctx context.Context, req *SuggestionRequest) ([]string, error) {
	return e.fetcher.Fetch(ctx, req.SessionID)
}

// ApplySuggestions installs fetched suggestions unless a newer send or switch
// has already cleared them. Any failure empties the list; stale suggestions
// from a previous turn are never shown.
func (e *Engine) ApplySuggestions(req *SuggestionRequest, list []string, err error) {
	if req.SessionID != e.registry.ActiveID() || req.Turn != e.suggestionTurn {
		return
	}
	if err != nil {
		e.suggestions = nil
		return
	}
	e.suggestions = list
}

func (e *Engine) clearSuggestions() {
	e.suggestions = nil
	e.suggestionTurn++
}

// SetReplyMode flips the active session's reply mode.
func (e *Engine) SetReplyMode(mode ReplyMode) error {
	sess := e.registry.Active()
	if sess == nil {
		return ErrNotFound
	}
	sess.ReplyMode = mode
	return nil
}

// Accessors for the presentation layer. Snapshots, never internal slices.

func (e *Engine) Sessions() []SessionInfo { return e.registry.List() }

func (e *Engine) ActiveSession() *Session { return e.registry.Active() }

// ActiveMessages returns the active session's timeline contents.
func (e *Engine) ActiveMessages() []Message {
	sess := e.registry.Active()
	if sess == nil {
		return nil
	}
	return sess.Timeline.Messages()
}

func (e *Engine) Suggestions() []string {
	out := make([]string, len(e.suggestions))
	copy(out, e.suggestions)
	return out
}

// StaleDiscards counts replies and syncs that resolved after their session
// context was gone. Invisible to users; observable for tests.
func (e *Engine) StaleDiscards() int { return e.staleDiscards }

// Voice exposes the single-flight capture manager.
func (e *Engine) Voice() *VoiceManager { return e.voice }

// Client exposes the backend for off-loop commands issued by the caller.
func (e *Engine) Client() BackendClient { return e.client }
