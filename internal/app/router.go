package app

import (
	"context"
	"strings"
)

// ReplyPayload is what a strategy hands to playback: plain text or an image
// reference.
type ReplyPayload struct {
	Kind    PayloadKind
	Content string
}

// Strategy produces one assistant reply for an outgoing user message.
type Strategy interface {
	Produce(ctx context.Context, sessionID, text string) (ReplyPayload, error)
}

// ReplyProducer is the slice of the backend the strategies call.
type ReplyProducer interface {
	SendText(ctx context.Context, sessionID, text string) (string, error)
	SendImagePrompt(ctx context.Context, sessionID, prompt string) (string, error)
}

type textStrategy struct {
	client ReplyProducer
}

func (s textStrategy) Produce(ctx context.Context, sessionID, text string) (ReplyPayload, error) {
	reply, err := s.client.SendText(ctx, sessionID, text)
	if err != nil {
		return ReplyPayload{}, err
	}
	return ReplyPayload{Kind: KindText, Content: reply}, nil
}

type imageStrategy struct {
	client ReplyProducer
}

func (s imageStrategy) Produce(ctx context.Context, sessionID, prompt string) (ReplyPayload, error) {
	ref, err := s.client.SendImagePrompt(ctx, sessionID, prompt)
	if err != nil {
		return ReplyPayload{}, err
	}
	return ReplyPayload{Kind: KindImage, Content: ref}, nil
}

// ModeRouter picks the reply strategy for a session's reply mode. It holds no
// state of its own; the mode flag lives on the session.
type ModeRouter struct {
	text  Strategy
	image Strategy
}

func NewModeRouter(client ReplyProducer) *ModeRouter {
	return &ModeRouter{
		text:  textStrategy{client: client},
		image: imageStrategy{client: client},
	}
}

func (r *ModeRouter) Route(mode ReplyMode) Strategy {
	if mode == ReplyImage {
		return r.image
	}
	return r.text
}

type cannedRule struct {
	pattern string
	// exact rules match the whole lower-cased input, the rest match as a
	// substring.
	exact bool
	reply string
}

// cannedRules is checked in order against the lower-cased input before any
// remote call. First match wins and bypasses the reply mode entirely.
var cannedRules = []cannedRule{
	{pattern: "hi bot!", exact: true, reply: "Hello! How can I help you today?"},
	{pattern: "hello", exact: true, reply: "Hello! How can I help you today?"},
	{pattern: "hi", exact: true, reply: "Hi there! What would you like to talk about?"},
	{pattern: "who are you", exact: false, reply: "I'm your chat assistant. Ask me anything."},
	{pattern: "thank you", exact: false, reply: "You're welcome!"},
	{pattern: "thanks", exact: true, reply: "You're welcome!"},
	{pattern: "bye", exact: true, reply: "Goodbye! Come back any time."},
}

// MatchCanned returns a synthesized reply for inputs covered by the static
// rule table.
func MatchCanned(input string) (ReplyPayload, bool) {
	lowered := strings.ToLower(strings.TrimSpace(input))
	if lowered == "" {
		return ReplyPayload{}, false
	}
	for _, r := range cannedRules {
		if r.exact {
			if lowered == r.pattern {
				return ReplyPayload{Kind: KindText, Content: r.reply}, true
			}
			continue
		}
		if strings.Contains(lowered, r.pattern) {
			return ReplyPayload{Kind: KindText, Content: r.reply}, true
		}
	}
	return ReplyPayload{}, false
}
