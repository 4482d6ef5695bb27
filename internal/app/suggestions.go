package app

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SuggestionClient is the slice of the backend that serves follow-up prompts.
type SuggestionClient interface {
	FetchSuggestions(ctx context.Context, sessionID string) ([]string, error)
}

// SuggestionFetcher requests follow-up prompts after a completed text reply.
// It is best-effort: failures surface as an empty list, never as a user-facing
// error. Concurrent fetches for the same session collapse into one call.
type SuggestionFetcher struct {
	client SuggestionClient
	group  singleflight.Group
}

func NewSuggestionFetcher(client SuggestionClient) *SuggestionFetcher {
	return &SuggestionFetcher{client: client}
}

func (f *SuggestionFetcher) Fetch(ctx context.Context, sessionID string) ([]string, error) {
	v, err, _ := f.group.Do(sessionID, func() (interface{}, error) {
		return f.client.FetchSuggestions(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	list, _ := v.([]string)
	return list, nil
}
