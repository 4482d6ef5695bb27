package tui

import (
	"strings"
	"testing"
	"time"

	"chat-cli/internal/app"

	"github.com/charmbracelet/lipgloss"
)

func highlightsFor(msgs ...app.Message) []app.Highlight {
	out := make([]app.Highlight, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, app.Highlight{Message: m})
	}
	return out
}

func TestFormatTranscriptLabelsAndStates(t *testing.T) {
	theme := NewNoColorTheme()
	got := FormatTranscript(highlightsFor(
		app.Message{Origin: app.OriginUser, Kind: app.KindText, Content: "hello there", State: app.StateConfirmed},
		app.Message{Origin: app.OriginAssistant, Kind: app.KindText, Content: "hi yourself", State: app.StateConfirmed},
		app.Message{Origin: app.OriginUser, Kind: app.KindText, Content: "still waiting", State: app.StatePending},
	), "", false, theme, 0)

	for _, want := range []string{"You: hello there", "Bot: hi yourself", "(sending)"} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestFormatTranscriptFailedMarker(t *testing.T) {
	theme := NewNoColorTheme()
	got := FormatTranscript(highlightsFor(
		app.Message{Origin: app.OriginUser, Kind: app.KindText, Content: "lost one", State: app.StateFailed},
	), "", false, theme, 0)
	if !strings.Contains(got, "(failed)") {
		t.Errorf("no failed marker:\n%s", got)
	}
}

func TestFormatTranscriptImagePrefix(t *testing.T) {
	theme := NewNoColorTheme()
	got := FormatTranscript(highlightsFor(
		app.Message{Origin: app.OriginAssistant, Kind: app.KindImage, Content: "https://img.example/cat.png", State: app.StateConfirmed},
	), "", false, theme, 0)
	if !strings.Contains(got, "[image] https://img.example/cat.png") {
		t.Errorf("image reply not marked:\n%s", got)
	}
}

func TestImageHighlightAlignsWithRawContent(t *testing.T) {
	theme := NewNoColorTheme()
	theme.Match = lipgloss.NewStyle().Transform(func(s string) string { return "«" + s + "»" })

	tl := &app.Timeline{}
	tl.Append(app.Message{ID: "m1", Origin: app.OriginAssistant, Kind: app.KindImage, Content: "a cat picture", State: app.StateConfirmed})

	got := FormatTranscript(app.HighlightTimeline(tl, "cat"), "", false, theme, 0)
	if !strings.Contains(got, "[image] a «cat» picture") {
		t.Errorf("highlight misaligned on image message:\n%s", got)
	}
}

func TestFormatTranscriptRevealLine(t *testing.T) {
	theme := NewNoColorTheme()

	got := FormatTranscript(nil, "par", true, theme, 0)
	if !strings.Contains(got, "Bot: par▍") {
		t.Errorf("partial reveal not shown:\n%s", got)
	}

	got = FormatTranscript(nil, "", true, theme, 0)
	if !strings.Contains(got, "assistant is typing...") {
		t.Errorf("empty reveal placeholder missing:\n%s", got)
	}

	got = FormatTranscript(nil, "", false, theme, 0)
	if got != "" {
		t.Errorf("idle transcript should be empty, got %q", got)
	}
}

func TestFormatSessionTabs(t *testing.T) {
	theme := NewNoColorTheme()
	infos := []app.SessionInfo{
		{ID: "a", Ordinal: 1},
		{ID: "b", Ordinal: 2},
	}
	got := FormatSessionTabs(infos, "b", theme)
	if !strings.Contains(got, "[Chat 2]") {
		t.Errorf("active tab not bracketed: %q", got)
	}
	if !strings.Contains(got, "Chat 1") {
		t.Errorf("inactive tab missing: %q", got)
	}

	if got := FormatSessionTabs(nil, "", theme); !strings.Contains(got, "no chats") {
		t.Errorf("empty tabs = %q", got)
	}
}

func TestFormatSyncStatus(t *testing.T) {
	theme := NewNoColorTheme()
	if got := FormatSyncStatus(false, time.Time{}, theme); !strings.Contains(got, "not synced") {
		t.Errorf("unsynced badge = %q", got)
	}
	at := time.Date(2026, 8, 30, 9, 41, 0, 0, time.UTC)
	if got := FormatSyncStatus(true, at, theme); !strings.Contains(got, "synced 09:41") {
		t.Errorf("synced badge = %q", got)
	}
	if got := FormatSyncStatus(true, time.Time{}, theme); !strings.Contains(got, "synced") {
		t.Errorf("zero-time synced badge = %q", got)
	}
}

func TestFormatSuggestions(t *testing.T) {
	theme := NewNoColorTheme()
	got := FormatSuggestions([]string{"tell me more", "why?"}, theme)
	if !strings.Contains(got, "1) tell me more") || !strings.Contains(got, "2) why?") {
		t.Errorf("suggestions row = %q", got)
	}
	if FormatSuggestions(nil, theme) != "" {
		t.Error("empty suggestion list should render nothing")
	}
}
