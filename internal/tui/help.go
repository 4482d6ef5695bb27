package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit        key.Binding
	Send        key.Binding
	NewChat     key.Binding
	NextChat    key.Binding
	ToggleMode  key.Binding
	Search      key.Binding
	CancelReply key.Binding
	Voice       key.Binding
	Help        key.Binding
	HistPrev    key.Binding
	HistNext    key.Binding
	Suggest1    key.Binding
	Suggest2    key.Binding
	Suggest3    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "next chat"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "text/image mode"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "search"),
		),
		CancelReply: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "stop reply"),
		),
		Voice: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "voice"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "help"),
		),
		HistPrev: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+up", "older prompt"),
		),
		HistNext: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+down", "newer prompt"),
		),
		Suggest1: key.NewBinding(key.WithKeys("alt+1")),
		Suggest2: key.NewBinding(key.WithKeys("alt+2")),
		Suggest3: key.NewBinding(key.WithKeys("alt+3")),
	}
}

func footerHelp(keys keyMap) string {
	parts := []string{
		keys.Send.Help().Key + " " + keys.Send.Help().Desc,
		keys.NewChat.Help().Key + " " + keys.NewChat.Help().Desc,
		keys.NextChat.Help().Key + " " + keys.NextChat.Help().Desc,
		keys.Search.Help().Key + " " + keys.Search.Help().Desc,
		keys.Help.Help().Key + " " + keys.Help.Help().Desc,
	}
	return strings.Join(parts, " | ")
}

func helpView(keys keyMap, theme Theme) string {
	var b strings.Builder
	b.WriteString(theme.TopBarTitle.Render("chatcli help"))
	b.WriteString("\n\n")
	for _, bind := range []key.Binding{
		keys.Send, keys.NewChat, keys.NextChat, keys.ToggleMode,
		keys.Search, keys.CancelReply, keys.Voice,
		keys.HistPrev, keys.HistNext, keys.Quit,
	} {
		b.WriteString("  ")
		b.WriteString(theme.TopBarBadge.Render(bind.Help().Key))
		b.WriteString("  ")
		b.WriteString(bind.Help().Desc)
		b.WriteString("\n")
	}
	b.WriteString("\n  alt+1..3 insert a suggested follow-up\n")
	b.WriteString("\n")
	b.WriteString(theme.Footer.Render("ctrl+h closes this screen"))
	return b.String()
}
