// Package tui provides the terminal user interface for FreeDay chat.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/freedayhq/freeday-chat/internal/constants"
	"github.com/freedayhq/freeday-chat/internal/core"
	"github.com/freedayhq/freeday-chat/internal/store"
)

// Focus tracks which pane owns the keyboard.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusInput
	FocusSearch
)

// Model is the main TUI model.
type Model struct {
	session  *core.Session
	drafts   *store.Store
	eventCh  <-chan core.Event
	siteBase string

	width  int
	height int
	ready  bool

	focus       Focus
	selectedIdx int
	searching   bool
	search      textinput.Model
	input       textinput.Model
	vp          viewport.Model
	spin        spinner.Model

	thinking     bool
	justSwitched bool
	banner       string
	err          error
}

// EventMsg wraps a core event for the TUI.
type EventMsg struct {
	Event core.Event
}

// New creates a new TUI model. drafts may be nil, which disables draft
// persistence.
func New(session *core.Session, drafts *store.Store, eventCh <-chan core.Event, siteBase string) Model {
	search := textinput.New()
	search.Placeholder = "Search conversations"
	search.Prompt = "/ "
	search.CharLimit = 64

	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "> "
	input.CharLimit = constants.MaxMessageLength

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = thinkingStyle

	return Model{
		session:  session,
		drafts:   drafts,
		eventCh:  eventCh,
		siteBase: siteBase,
		search:   search,
		input:    input,
		spin:     spin,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForEvents(),
		textinput.Blink,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		m.ready = true
		m.refreshViewport()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(m.listenForEvents(), cmd)

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			m.refreshViewport()
			return m, cmd
		}
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sidebarW := m.sidebarWidth()
	chatW := m.width - sidebarW

	searchView := ""
	if m.searching {
		searchView = m.search.View()
	}
	items := m.visibleItems()
	sidebar := RenderSidebar(items, m.cursorIdx(items), m.activeID(), sidebarW, m.height, searchView, time.Now())

	var right []string
	if banner := RenderBanner(m.banner, chatW); banner != "" {
		right = append(right, banner)
	}

	if view, ok := m.activeView(); ok {
		right = append(right, RenderChatHeader(view, chatW))
	} else {
		right = append(right, chatHeaderStyle.Width(chatW).Render("FreeDay"))
	}

	right = append(right, m.vp.View())

	inputFrame := inputBlurredStyle
	if m.focus == FocusInput {
		inputFrame = inputStyle
	}
	right = append(right, inputFrame.Width(chatW-2).Render(m.input.View()))

	if m.err != nil {
		right = append(right, historyErrorStyle.Render("Error: "+m.err.Error()))
	} else {
		right = append(right, helpStyle.Render("tab focus · / search · enter send · ctrl+r reconnect · ctrl+c quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebar,
		strings.Join(right, "\n"),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	switch m.focus {
	case FocusSearch:
		return m.handleSearchKey(msg)
	case FocusInput:
		return m.handleInputKey(msg)
	default:
		return m.handleSidebarKey(msg)
	}
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.visibleItems()

	switch {
	case key.Matches(msg, keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}

	case key.Matches(msg, keys.Down):
		if m.selectedIdx < len(items)-1 {
			m.selectedIdx++
		}

	case key.Matches(msg, keys.Enter):
		if idx := m.cursorIdx(items); idx < len(items) {
			m.selectConversation(items[idx].ID)
			m.focus = FocusInput
			m.input.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, keys.Search):
		m.searching = true
		m.focus = FocusSearch
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Tab):
		m.focus = FocusInput
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Reconnect):
		return m, m.reconnect()

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.focus = FocusSidebar
		m.selectedIdx = 0
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.search.Blur()
		m.focus = FocusSidebar
		m.selectedIdx = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedIdx = 0
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Tab):
		m.input.Blur()
		m.focus = FocusSidebar
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.thinking && m.activeID() == constants.AssistantConversationID {
			// one assistant turn at a time
			return m, nil
		}
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		if err := m.session.Send(value); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.input.SetValue("")
		m.saveDraft(m.activeID(), "")
		return m, nil

	case key.Matches(msg, keys.Reconnect):
		return m, m.reconnect()

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEvent applies a session event to the display. It returns a command
// when the event needs one, e.g. starting the spinner.
func (m *Model) handleEvent(event core.Event) tea.Cmd {
	switch event.Type {
	case core.EventMessagesReplaced, core.EventHistoryFailed:
		if event.ConversationID == m.activeID() {
			m.refreshViewport()
			m.vp.GotoBottom()
			m.justSwitched = false
		}

	case core.EventMessageAppended:
		data, ok := event.Data.(core.AppendedData)
		if !ok || !data.Active {
			return nil
		}
		distance := DistanceFromBottom(m.vp.TotalLineCount(), m.vp.YOffset, m.vp.Height)
		m.refreshViewport()
		switch FollowDecision(m.justSwitched, distance) {
		case FollowJump, FollowScroll:
			m.vp.GotoBottom()
		}
		m.justSwitched = false

	case core.EventAssistantThinking:
		data, ok := event.Data.(core.ThinkingData)
		if !ok {
			return nil
		}
		wasThinking := m.thinking
		m.thinking = data.Loading
		m.refreshViewport()
		if m.thinking {
			m.vp.GotoBottom()
		}
		if m.thinking && !wasThinking {
			return m.spin.Tick
		}

	case core.EventTransportDown:
		if data, ok := event.Data.(core.ErrorData); ok {
			m.banner = data.Error
		} else {
			m.banner = "Cannot connect to chat server."
		}
		m.applyLayout()

	case core.EventTransportUp:
		m.banner = ""
		m.err = nil
		m.applyLayout()
	}

	return nil
}

// selectConversation switches the displayed conversation, stashing the
// half-typed draft of the one being left and restoring the target's.
func (m *Model) selectConversation(id string) {
	if prev := m.activeID(); prev != "" && prev != id {
		m.saveDraft(prev, m.input.Value())
	}

	if err := m.session.Select(id); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.justSwitched = true
	m.input.SetValue(m.loadDraft(id))
	m.refreshViewport()
	m.vp.GotoBottom()
}

// refreshViewport rebuilds the transcript content from the message store.
func (m *Model) refreshViewport() {
	active := m.activeID()
	if active == "" {
		m.vp.SetContent(previewStyle.Padding(0, 1).Render("Select a conversation to start chatting."))
		return
	}

	s := m.session.Store()
	content := RenderMessages(s.Messages(active), m.session.Self().ID, s.State(active), s.Failure(active), m.vp.Width, m.siteBase)
	if m.thinking && active == constants.AssistantConversationID {
		content += "\n" + RenderThinking(m.spin.View())
	}
	m.vp.SetContent(content)
}

func (m *Model) applyLayout() {
	sidebarW := m.sidebarWidth()
	chatW := m.width - sidebarW

	// header(1..2) + input frame(3) + help(1), plus the banner row when the
	// transport is degraded
	chrome := 6
	if m.banner != "" {
		chrome++
	}
	vpHeight := m.height - chrome
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.vp.Width = chatW
	m.vp.Height = vpHeight
	m.input.Width = chatW - 8
	m.search.Width = sidebarW - 4
}

func (m Model) sidebarWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	if w > 40 {
		w = 40
	}
	if w > m.width {
		w = m.width
	}
	return w
}

// visibleItems derives the sidebar entries from the session's list, filtered
// by the live search query.
func (m Model) visibleItems() []core.ConversationView {
	self := m.session.Self()
	query := ""
	if m.searching {
		query = m.search.Value()
	}

	conversations := m.session.List().Filter(self, query)
	items := make([]core.ConversationView, len(conversations))
	for i, c := range conversations {
		items[i] = core.NormalizeConversation(c, self)
	}
	return items
}

// cursorIdx clamps the cursor to the current item count, which shrinks while
// filtering.
func (m Model) cursorIdx(items []core.ConversationView) int {
	if m.selectedIdx >= len(items) {
		if len(items) == 0 {
			return 0
		}
		return len(items) - 1
	}
	return m.selectedIdx
}

func (m Model) activeID() string {
	return m.session.List().Selected()
}

func (m Model) activeView() (core.ConversationView, bool) {
	id := m.activeID()
	if id == "" {
		return core.ConversationView{}, false
	}
	c, ok := m.session.List().Get(id)
	if !ok {
		return core.ConversationView{}, false
	}
	return core.NormalizeConversation(c, m.session.Self()), true
}

func (m Model) saveDraft(conversationID, body string) {
	if m.drafts == nil || conversationID == "" {
		return
	}
	if err := m.drafts.SaveDraft(conversationID, body); err != nil {
		log.Debug().Err(err).Msg("save draft failed")
	}
}

func (m Model) loadDraft(conversationID string) string {
	if m.drafts == nil {
		return ""
	}
	body, err := m.drafts.Draft(conversationID)
	if err != nil {
		log.Debug().Err(err).Msg("load draft failed")
		return ""
	}
	return body
}

func (m Model) reconnect() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.Reconnect(); err != nil {
			log.Warn().Err(err).Msg("manual reconnect failed")
		}
		return nil
	}
}

func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.eventCh
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// Key bindings
var keys = struct {
	Quit      key.Binding
	Escape    key.Binding
	Enter     key.Binding
	Tab       key.Binding
	Up        key.Binding
	Down      key.Binding
	Search    key.Binding
	Reconnect key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}{
	Quit:      key.NewBinding(key.WithKeys("ctrl+c")),
	Escape:    key.NewBinding(key.WithKeys("esc")),
	Enter:     key.NewBinding(key.WithKeys("enter")),
	Tab:       key.NewBinding(key.WithKeys("tab")),
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	Search:    key.NewBinding(key.WithKeys("/")),
	Reconnect: key.NewBinding(key.WithKeys("ctrl+r")),
	PageUp:    key.NewBinding(key.WithKeys("pgup")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown")),
}
