package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BackendClient is the remote chat service the engine consumes. All calls
// carry the bearer credential supplied at construction; a rejected credential
// surfaces as ErrUnauthorized and is never retried here.
type BackendClient interface {
	ListSessions(ctx context.Context) ([]RemoteSession, error)
	CreateSession(ctx context.Context) (string, error)
	FetchHistory(ctx context.Context, sessionID string) ([]HistoryRecord, error)
	SendText(ctx context.Context, sessionID, text string) (string, error)
	SendImagePrompt(ctx context.Context, sessionID, prompt string) (string, error)
	FetchSuggestions(ctx context.Context, sessionID string) ([]string, error)
}

// RemoteSession is one chat known to the backend.
type RemoteSession struct {
	ID string
}

type HTTPClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 120 * time.Second},
	}
}

// Wire shapes. The backend uses integer chat ids; the engine treats ids as
// opaque strings, so they are formatted at this boundary.

type chatListResponse struct {
	Chats []struct {
		ID     int64 `json:"id"`
		Number int   `json:"number"`
	} `json:"chats"`
}

type newChatResponse struct {
	ChatID int64 `json:"chat_id"`
}

type storedMessage struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Response string `json:"response"`
}

type sendRequest struct {
	Content string `json:"content"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type messageResponse struct {
	Response string `json:"response"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (c *HTTPClient) ListSessions(ctx context.Context) ([]RemoteSession, error) {
	var out chatListResponse
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]RemoteSession, 0, len(out.Chats))
	for _, chat := range out.Chats {
		sessions = append(sessions, RemoteSession{ID: strconv.FormatInt(chat.ID, 10)})
	}
	return sessions, nil
}

func (c *HTTPClient) CreateSession(ctx context.Context) (string, error) {
	var out newChatResponse
	if err := c.do(ctx, http.MethodPost, "/chats/new", nil, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.ChatID, 10), nil
}

func (c *HTTPClient) FetchHistory(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	var out []storedMessage
	if err := c.do(ctx, http.MethodGet, "/chats/"+sessionID+"/messages", nil, &out); err != nil {
		return nil, err
	}
	records := make([]HistoryRecord, 0, len(out))
	for _, m := range out {
		records = append(records, HistoryRecord{
			UserContent:      m.Content,
			AssistantContent: m.Response,
		})
	}
	return records, nil
}

func (c *HTTPClient) SendText(ctx context.Context, sessionID, text string) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/chats/"+sessionID+"/send", sendRequest{Content: text}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *HTTPClient) SendImagePrompt(ctx context.Context, sessionID, prompt string) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/chats/"+sessionID+"/generate-image", promptRequest{Prompt: prompt}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *HTTPClient) FetchSuggestions(ctx context.Context, sessionID string) ([]string, error) {
	var out suggestionsResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+sessionID+"/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := method + " " + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return netErr(op, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return netErr(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return netErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return netErr(op, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return netErr(op, err)
	}
	return nil
}
