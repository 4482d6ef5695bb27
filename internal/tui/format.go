package tui

import (
	"fmt"
	"strings"
	"time"

	"chat-cli/internal/app"

	"github.com/charmbracelet/lipgloss"
)

// FormatTranscript renders timeline messages with search highlights plus the
// transient in-progress reveal, which is not a timeline message.
func FormatTranscript(highlights []app.Highlight, revealText string, revealing bool, theme Theme, width int) string {
	var b strings.Builder
	for i, h := range highlights {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(formatMessage(h, theme, width))
	}
	if revealing {
		if len(highlights) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(theme.RoleBot.Render("Bot:"))
		b.WriteString(" ")
		if revealText == "" {
			b.WriteString(theme.Pending.Render("assistant is typing..."))
		} else {
			b.WriteString(revealText)
			b.WriteString("▍")
		}
	}
	return b.String()
}

func formatMessage(h app.Highlight, theme Theme, width int) string {
	m := h.Message

	var label string
	switch {
	case m.IsError:
		label = theme.RoleErr.Render("Bot:")
	case m.Origin == app.OriginUser:
		label = theme.RoleYou.Render("You:")
	default:
		label = theme.RoleBot.Render("Bot:")
	}

	// Spans are byte offsets into the raw content; style them before any
	// prefixing.
	content := applySpans(m.Content, h.Spans, theme.Match)
	if m.Kind == app.KindImage {
		content = "[image] " + content
	}

	line := label + " " + content
	if m.State == app.StatePending {
		line += " " + theme.Pending.Render("(sending)")
	}
	if m.State == app.StateFailed {
		line += " " + theme.RoleErr.Render("(failed)")
	}
	if width > 0 {
		line = lipgloss.NewStyle().Width(width).Render(line)
	}
	return line
}

// applySpans styles the matched ranges. Spans are byte offsets into content
// and arrive in order, non-overlapping.
func applySpans(content string, spans []app.Span, style lipgloss.Style) string {
	if len(spans) == 0 {
		return content
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		if s.Start < prev || s.End > len(content) {
			continue
		}
		b.WriteString(content[prev:s.Start])
		b.WriteString(style.Render(content[s.Start:s.End]))
		prev = s.End
	}
	b.WriteString(content[prev:])
	return b.String()
}

// FormatSessionTabs renders the chat switcher. Ordinals come from creation
// order and are display-only.
func FormatSessionTabs(infos []app.SessionInfo, activeID string, theme Theme) string {
	if len(infos) == 0 {
		return theme.Tab.Render("no chats")
	}
	parts := make([]string, 0, len(infos))
	for _, info := range infos {
		label := fmt.Sprintf("Chat %d", info.Ordinal)
		if info.ID == activeID {
			parts = append(parts, theme.TabActive.Render("["+label+"]"))
		} else {
			parts = append(parts, theme.Tab.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

// FormatSyncStatus renders the top-bar sync badge for the active session.
// Local-only sessions have never been reconciled against the backend.
func FormatSyncStatus(synced bool, at time.Time, theme Theme) string {
	if !synced {
		return theme.TopBarMeta.Render("not synced")
	}
	if at.IsZero() {
		return theme.TopBarMeta.Render("synced")
	}
	return theme.TopBarMeta.Render("synced " + at.Format("15:04"))
}

// FormatSuggestions renders the follow-up prompt row shown after a reply.
func FormatSuggestions(list []string, theme Theme) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, 0, len(list))
	for i, s := range list {
		parts = append(parts, theme.Suggestion.Render(fmt.Sprintf("%d) %s", i+1, s)))
	}
	return strings.Join(parts, "  ")
}
