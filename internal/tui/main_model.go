package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chat-cli/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Messages carried back into the update loop from off-loop work. Each one
// holds the request it answers so the engine can reject stale results.

type sessionsLoadedMsg struct {
	ids []string
	err error
}

type sessionCreatedMsg struct {
	id  string
	err error
}

type historyMsg struct {
	req     *app.SyncRequest
	records []app.HistoryRecord
	err     error
}

type replyMsg struct {
	req     *app.SendRequest
	payload app.ReplyPayload
	err     error
}

type suggestionsMsg struct {
	req  *app.SuggestionRequest
	list []string
	err  error
}

// revealTickMsg drives one reveal step. The generation pins a tick to the
// chain that scheduled it: a tick from a chain that has since been replaced
// (new reply, cancel, switch) is dropped instead of advancing the new job.
type revealTickMsg struct {
	gen uint64
}

type voiceTextMsg struct {
	text string
	ok   bool
}

type MainModel struct {
	engine  *app.Engine
	cfg     app.Config
	prompts *app.PromptStore

	theme Theme
	keys  keyMap

	width  int
	height int
	ready  bool

	input  textarea.Model
	chatVP viewport.Model

	searchOpen bool
	search     textinput.Model

	showHelp bool

	revealing  bool
	revealText string
	// revealGen bumps whenever a reveal chain starts or stops, so at most one
	// tick chain is ever live. One tick per interval, never two.
	revealGen uint64

	// Prompt recall state. histPos == len(promptHist) means "editing a new
	// prompt"; draft preserves it while browsing older ones.
	promptHist []string
	histPos    int
	draft      string

	status  string
	voiceCh <-chan string
}

func New(engine *app.Engine, cfg app.Config, prompts *app.PromptStore) *MainModel {
	ta := textarea.New()
	ta.Placeholder = "Say something, then press Enter."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	si := textinput.New()
	si.Placeholder = "search this chat"
	si.Prompt = "/ "
	si.CharLimit = 200

	m := &MainModel{
		engine:  engine,
		cfg:     cfg,
		prompts: prompts,
		theme:   NewTheme(),
		keys:    defaultKeyMap(),
		input:   ta,
		search:  si,
	}
	if prompts != nil {
		if hist, err := prompts.Recent(100); err == nil {
			m.promptHist = hist
		}
	}
	m.histPos = len(m.promptHist)
	return m
}

func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadSessionsCmd())
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(10, m.width-6))
		vpHeight := max(3, m.height-8)
		if !m.ready {
			m.chatVP = viewport.New(max(10, m.width-4), vpHeight)
			m.ready = true
		} else {
			m.chatVP.Width = max(10, m.width-4)
			m.chatVP.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.status = "Server error, please try again!"
		}
		if len(msg.ids) == 0 {
			// Nothing on the server yet (or it is unreachable): bring up the
			// first chat.
			return m, m.createSessionCmd()
		}
		req := m.engine.AdoptSessions(msg.ids)
		m.refreshViewport()
		if req != nil {
			return m, m.fetchHistoryCmd(req)
		}
		return m, nil

	case sessionCreatedMsg:
		// An empty id falls back to a local session, so this always succeeds.
		m.engine.NewSession(msg.id)
		m.stopReveal()
		m.refreshViewport()
		return m, nil

	case historyMsg:
		if err := m.engine.ApplyHistory(msg.req, msg.records, msg.err); err != nil {
			m.status = "Could not load chat history"
		}
		m.refreshViewport()
		return m, nil

	case replyMsg:
		m.engine.ResolveSend(msg.req, msg.payload, msg.err)
		m.refreshViewport()
		if m.engine.Revealing() {
			return m, m.startReveal()
		}
		return m, nil

	case revealTickMsg:
		if msg.gen != m.revealGen {
			// A tick from a superseded chain; the live chain owns the job.
			return m, nil
		}
		u := m.engine.TickPlayback()
		switch {
		case u.Revealing:
			m.revealing = true
			m.revealText = u.Prefix
			m.refreshViewport()
			return m, m.revealTickCmd()
		case u.Completed:
			m.stopReveal()
			m.refreshViewport()
			if u.Suggestions != nil {
				return m, m.fetchSuggestionsCmd(u.Suggestions)
			}
			return m, nil
		default:
			// Cancelled or stale; stop ticking.
			m.stopReveal()
			m.refreshViewport()
			return m, nil
		}

	case suggestionsMsg:
		m.engine.ApplySuggestions(msg.req, msg.list, msg.err)
		return m, nil

	case voiceTextMsg:
		if !msg.ok {
			m.voiceCh = nil
			return m, nil
		}
		m.input.SetValue(strings.TrimSpace(m.input.Value() + " " + msg.text))
		return m, m.waitVoiceCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.searchOpen {
		switch {
		case msg.String() == "esc":
			m.searchOpen = false
			m.search.SetValue("")
			m.search.Blur()
			m.refreshViewport()
			return m, nil
		case key.Matches(msg, m.keys.Search), msg.String() == "enter":
			m.searchOpen = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.refreshViewport()
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchOpen = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Send):
		return m.onSend()

	case key.Matches(msg, m.keys.NewChat):
		return m, m.createSessionCmd()

	case key.Matches(msg, m.keys.NextChat):
		return m.onNextChat()

	case key.Matches(msg, m.keys.ToggleMode):
		if sess := m.engine.ActiveSession(); sess != nil {
			next := app.ReplyText
			if sess.ReplyMode == app.ReplyText {
				next = app.ReplyImage
			}
			_ = m.engine.SetReplyMode(next)
		}
		return m, nil

	case key.Matches(msg, m.keys.CancelReply):
		m.engine.CancelPlayback()
		m.stopReveal()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.Voice):
		return m.onVoiceToggle()

	case key.Matches(msg, m.keys.HistPrev):
		m.recallPrompt(-1)
		return m, nil

	case key.Matches(msg, m.keys.HistNext):
		m.recallPrompt(1)
		return m, nil

	case key.Matches(msg, m.keys.Suggest1):
		m.insertSuggestion(0)
		return m, nil
	case key.Matches(msg, m.keys.Suggest2):
		m.insertSuggestion(1)
		return m, nil
	case key.Matches(msg, m.keys.Suggest3):
		m.insertSuggestion(2)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) onSend() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	req, err := m.engine.BeginSend(text)
	if err != nil {
		return m, nil
	}
	m.input.Reset()
	m.status = ""
	m.stopReveal()
	m.rememberPrompt(text)
	m.refreshViewport()
	return m, m.produceCmd(req)
}

func (m *MainModel) onNextChat() (tea.Model, tea.Cmd) {
	infos := m.engine.Sessions()
	if len(infos) < 2 {
		return m, nil
	}
	activeID := ""
	if sess := m.engine.ActiveSession(); sess != nil {
		activeID = sess.ID
	}
	next := infos[0].ID
	for i, info := range infos {
		if info.ID == activeID {
			next = infos[(i+1)%len(infos)].ID
			break
		}
	}
	req, err := m.engine.SwitchSession(next)
	if err != nil {
		return m, nil
	}
	m.stopReveal()
	m.refreshViewport()
	if req != nil {
		return m, m.fetchHistoryCmd(req)
	}
	return m, nil
}

func (m *MainModel) onVoiceToggle() (tea.Model, tea.Cmd) {
	sess := m.engine.ActiveSession()
	if sess == nil {
		return m, nil
	}
	voice := m.engine.Voice()
	if owner, live := voice.Capturing(); live && owner == sess.ID {
		voice.StopCapture(sess.ID)
		m.voiceCh = nil
		m.status = ""
		return m, nil
	}
	ch, err := voice.StartCapture(context.Background(), sess.ID)
	if err != nil {
		m.status = "Voice input is not available on this system"
		return m, nil
	}
	m.voiceCh = ch
	m.status = "Listening..."
	return m, m.waitVoiceCmd()
}

func (m *MainModel) rememberPrompt(text string) {
	if m.prompts != nil {
		_ = m.prompts.Append(text)
	}
	if n := len(m.promptHist); n == 0 || m.promptHist[n-1] != text {
		m.promptHist = append(m.promptHist, text)
	}
	m.histPos = len(m.promptHist)
	m.draft = ""
}

func (m *MainModel) recallPrompt(delta int) {
	if len(m.promptHist) == 0 {
		return
	}
	if m.histPos == len(m.promptHist) {
		m.draft = m.input.Value()
	}
	pos := m.histPos + delta
	if pos < 0 || pos > len(m.promptHist) {
		return
	}
	m.histPos = pos
	if pos == len(m.promptHist) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.promptHist[pos])
	}
	m.input.CursorEnd()
}

func (m *MainModel) insertSuggestion(i int) {
	list := m.engine.Suggestions()
	if i < 0 || i >= len(list) {
		return
	}
	m.input.SetValue(list[i])
	m.input.CursorEnd()
}

// Commands.

func (m *MainModel) loadSessionsCmd() tea.Cmd {
	client := m.engine.Client()
	return func() tea.Msg {
		remote, err := client.ListSessions(context.Background())
		ids := make([]string, 0, len(remote))
		for _, r := range remote {
			ids = append(ids, r.ID)
		}
		return sessionsLoadedMsg{ids: ids, err: err}
	}
}

func (m *MainModel) createSessionCmd() tea.Cmd {
	client := m.engine.Client()
	return func() tea.Msg {
		id, err := client.CreateSession(context.Background())
		if err != nil {
			// Fall back to a local-only chat rather than failing the action.
			return sessionCreatedMsg{id: "", err: err}
		}
		return sessionCreatedMsg{id: id}
	}
}

func (m *MainModel) fetchHistoryCmd(req *app.SyncRequest) tea.Cmd {
	return func() tea.Msg {
		records, err := m.engine.FetchHistory(context.Background(), req)
		return historyMsg{req: req, records: records, err: err}
	}
}

func (m *MainModel) produceCmd(req *app.SendRequest) tea.Cmd {
	return func() tea.Msg {
		payload, err := m.engine.Produce(context.Background(), req)
		return replyMsg{req: req, payload: payload, err: err}
	}
}

func (m *MainModel) fetchSuggestionsCmd(req *app.SuggestionRequest) tea.Cmd {
	return func() tea.Msg {
		list, err := m.engine.FetchSuggestions(context.Background(), req)
		return suggestionsMsg{req: req, list: list, err: err}
	}
}

func (m *MainModel) startReveal() tea.Cmd {
	m.revealing = true
	m.revealText = ""
	m.revealGen++
	return m.revealTickCmd()
}

func (m *MainModel) stopReveal() {
	m.revealing = false
	m.revealText = ""
	m.revealGen++
}

func (m *MainModel) revealTickCmd() tea.Cmd {
	gen := m.revealGen
	return tea.Tick(m.cfg.TypingInterval(), func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

func (m *MainModel) waitVoiceCmd() tea.Cmd {
	ch := m.voiceCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		text, ok := <-ch
		return voiceTextMsg{text: text, ok: ok}
	}
}

// Rendering.

func (m *MainModel) refreshViewport() {
	if !m.ready {
		return
	}
	var highlights []app.Highlight
	if sess := m.engine.ActiveSession(); sess != nil {
		highlights = app.HighlightTimeline(sess.Timeline, m.search.Value())
	}
	m.chatVP.SetContent(FormatTranscript(highlights, m.revealText, m.revealing, m.theme, m.chatVP.Width))
	m.chatVP.GotoBottom()
}

func (m *MainModel) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.showHelp {
		return helpView(m.keys, m.theme)
	}

	var b strings.Builder
	b.WriteString(m.renderTopBar())
	b.WriteString("\n")
	b.WriteString(m.theme.Pane.Width(max(10, m.width-2)).Render(m.chatVP.View()))
	b.WriteString("\n")
	if row := FormatSuggestions(m.engine.Suggestions(), m.theme); row != "" {
		b.WriteString(row)
		b.WriteString("\n")
	}
	if m.searchOpen {
		b.WriteString(m.theme.InputBox.Width(max(10, m.width-2)).Render(m.search.View()))
	} else {
		b.WriteString(m.theme.InputBox.Width(max(10, m.width-2)).Render(m.input.View()))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *MainModel) renderTopBar() string {
	title := m.theme.TopBarTitle.Render("chatcli")
	mode := ""
	sync := ""
	if sess := m.engine.ActiveSession(); sess != nil {
		mode = m.theme.TopBarBadge.Render(fmt.Sprintf("[%s]", sess.ReplyMode))
		sync = FormatSyncStatus(sess.Synced(), sess.LastSyncedAt, m.theme)
	}
	tabs := FormatSessionTabs(m.engine.Sessions(), m.activeID(), m.theme)
	return m.theme.TopBar.Render(title + " " + mode + "  " + tabs + "  " + sync)
}

func (m *MainModel) renderFooter() string {
	if m.status != "" {
		return m.theme.RoleErr.Render(m.status)
	}
	if m.searchOpen {
		return m.theme.Footer.Render("enter keeps the filter, esc clears it")
	}
	return m.theme.Footer.Render(footerHelp(m.keys))
}

func (m *MainModel) activeID() string {
	if sess := m.engine.ActiveSession(); sess != nil {
		return sess.ID
	}
	return ""
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
