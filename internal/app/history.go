package app

import (
	"context"
	"time"
)

// HistoryRecord is one stored exchange from the backend: the user's content
// and the assistant's response.
type HistoryRecord struct {
	UserContent      string
	AssistantContent string
}

// HistoryFetcher is the slice of the backend used for reconciliation.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, sessionID string) ([]HistoryRecord, error)
}

// HistorySync reconciles a session's timeline against the authoritative
// backend history. Server history is the single source of truth after a sync:
// unconfirmed local entries do not survive a completed reconcile.
type HistorySync struct {
	client HistoryFetcher
}

func NewHistorySync(client HistoryFetcher) *HistorySync {
	return &HistorySync{client: client}
}

// Fetch pulls the authoritative history for a session. It touches no local
// state: on transport failure the timeline stays as it was and the session
// remains usable with stale data, the caller decides what to surface.
func (h *HistorySync) Fetch(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	return h.client.FetchHistory(ctx, sessionID)
}

// Apply maps each record to a confirmed user/assistant message pair and
// installs the result as the session's entire history. Bumping the epoch
// invalidates any reply still in flight for the pre-sync timeline.
func (h *HistorySync) Apply(sess *Session, records []HistoryRecord) {
	msgs := make([]Message, 0, len(records)*2)
	for _, rec := range records {
		msgs = append(msgs,
			Message{
				ID:      NewLocalID(),
				Origin:  OriginUser,
				Kind:    KindText,
				Content: rec.UserContent,
				State:   StateConfirmed,
			},
			Message{
				ID:      NewLocalID(),
				Origin:  OriginAssistant,
				Kind:    KindText,
				Content: rec.AssistantContent,
				State:   StateConfirmed,
			},
		)
	}
	sess.Timeline.Replace(msgs)
	sess.LastSyncedAt = time.Now()
	sess.synced = true
	sess.bumpEpoch()
}
