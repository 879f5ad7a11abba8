package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/actions"
	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/ideas"
	"github.com/execmind/execmind/internal/share"
	"github.com/execmind/execmind/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// captureUnavailableNotice is shown when the recognizer cannot start.
const captureUnavailableNotice = "Speech capture is not available.\nStart the speech daemon or set capture: scripted."

// Notifier wakes the update loop when services change state on other
// goroutines. Wakeups coalesce; Notify never blocks.
type Notifier chan struct{}

// NewNotifier creates a Notifier.
func NewNotifier() Notifier {
	return make(Notifier, 1)
}

// Notify schedules a StateChangedMsg.
func (n Notifier) Notify() {
	select {
	case n <- struct{}{}:
	default:
	}
}

// Counters receives dashboard activity.
type Counters interface {
	ActionToggled()
	IdeaCaptured()
}

// Deps are the services the model drives.
type Deps struct {
	Assistant    *assistant.Controller
	Share        *share.Panel
	Actions      *actions.List
	Ideas        *ideas.Inbox
	Changes      Notifier
	Counters     Counters
	MeetingTitle string
	Log          zerolog.Logger
}

// Model is the root bubbletea model for the dashboard.
type Model struct {
	deps Deps
	keys KeyMap

	// Assistant dialog
	session     assistant.Session
	panel       share.State
	notice      string
	response    viewport.Model
	renderedFor string
	toggling    bool

	// Sidebar
	actions        []actions.PendingAction
	selectedAction int

	// Ideas inbox
	ideas       []ideas.Idea
	ideaState   ideas.State
	ideaInput   textinput.Model
	editingIdea bool

	spinner spinner.Model

	// UI state
	width  int
	height int

	// Errors
	errorMessage string
}

// New creates a Model over deps.
func New(deps Deps) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.SpinnerStyle

	ti := textinput.New()
	ti.Placeholder = "What's the idea?"
	ti.CharLimit = 280

	return Model{
		deps:      deps,
		keys:      DefaultKeyMap(),
		response:  viewport.New(60, 10),
		spinner:   sp,
		ideaInput: ti,
	}
}

// Init starts listening for service changes and loads the dashboard.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.deps.Changes),
		loadDashboardCmd(m.deps.Actions, m.deps.Ideas),
		m.spinner.Tick,
	)
}

// waitForChange blocks until a service reports a change.
func waitForChange(ch Notifier) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return StateChangedMsg{}
	}
}

// loadDashboardCmd reads actions and ideas from the store.
func loadDashboardCmd(list *actions.List, inbox *ideas.Inbox) tea.Cmd {
	return func() tea.Msg {
		all, err := list.All()
		if err != nil {
			return DashboardLoadedMsg{Err: err}
		}
		captured, err := inbox.Ideas()
		if err != nil {
			return DashboardLoadedMsg{Err: err}
		}
		return DashboardLoadedMsg{Actions: all, Ideas: captured}
	}
}

// toggleCaptureCmd starts or stops capture off the update loop; the
// recognizer may have to talk to the speech daemon.
func toggleCaptureCmd(ctrl *assistant.Controller) tea.Cmd {
	return func() tea.Msg {
		if ctrl.Snapshot().Capturing {
			ctrl.StopCapture()
			return CaptureToggledMsg{}
		}
		return CaptureToggledMsg{Started: true, Err: ctrl.StartCapture()}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.response.Width = m.responseWidth()
		m.response.Height = m.responseHeight()
		m.renderedFor = ""
		m.syncResponse()
		return m, nil

	case StateChangedMsg:
		m.refresh()
		return m, waitForChange(m.deps.Changes)

	case CaptureToggledMsg:
		m.toggling = false
		var cmd tea.Cmd
		switch {
		case errors.Is(msg.Err, assistant.ErrCaptureUnavailable):
			m.notice = captureUnavailableNotice
		case msg.Err != nil:
			cmd = m.setError(msg.Err)
		case msg.Started:
			m.deps.Share.Close()
		}
		m.refresh()
		return m, cmd

	case DashboardLoadedMsg:
		if msg.Err != nil {
			return m, m.setError(msg.Err)
		}
		m.actions = msg.Actions
		m.ideas = msg.Ideas
		if m.selectedAction >= len(m.actions) {
			m.selectedAction = max(0, len(m.actions)-1)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ClearTransientErrorMsg:
		m.errorMessage = ""
		return m, nil
	}

	return m, nil
}

// refresh copies service state into the model.
func (m *Model) refresh() {
	m.session = m.deps.Assistant.Snapshot()
	m.panel = m.deps.Share.State()
	m.ideaState = m.deps.Ideas.State()
	m.syncResponse()
}

func (m Model) dialogOpen() bool {
	return m.session.ID != ""
}

// syncResponse renders the response into the viewport once per session and
// width.
func (m *Model) syncResponse() {
	if m.session.Response == nil {
		m.renderedFor = ""
		return
	}
	key := fmt.Sprintf("%s/%d", m.session.ID, m.response.Width)
	if key == m.renderedFor {
		return
	}
	out, err := ui.RenderMarkdown(m.session.Response.Content, m.response.Width)
	if err != nil {
		m.deps.Log.Warn().Err(err).Msg("render response")
		out = m.session.Response.Content
	}
	m.response.SetContent(out)
	m.response.GotoTop()
	m.renderedFor = key
}

func (m *Model) setError(err error) tea.Cmd {
	m.errorMessage = err.Error()
	return clearTransientErrorCmd()
}

func (m Model) quit() tea.Cmd {
	m.deps.Assistant.Close()
	m.deps.Share.Close()
	m.deps.Ideas.Close()
	return tea.Quit
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, m.quit()
	}

	// The notice blocks everything until dismissed.
	if m.notice != "" {
		if key.Matches(msg, m.keys.Confirm, m.keys.Cancel) {
			m.notice = ""
		}
		return m, nil
	}

	switch {
	case m.editingIdea:
		return m.handleIdeaKey(msg)
	case m.dialogOpen():
		return m.handleDialogKey(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.PostMeeting):
		m.openDialog(assistant.ModePostMeeting)
		return m, nil

	case key.Matches(msg, m.keys.PreMeeting):
		m.openDialog(assistant.ModePreMeeting)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selectedAction < len(m.actions)-1 {
			m.selectedAction++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedAction > 0 {
			m.selectedAction--
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if m.selectedAction >= len(m.actions) {
			return m, nil
		}
		if _, err := m.deps.Actions.Toggle(m.actions[m.selectedAction].ID); err != nil {
			return m, m.setError(err)
		}
		if m.deps.Counters != nil {
			m.deps.Counters.ActionToggled()
		}
		return m, loadDashboardCmd(m.deps.Actions, m.deps.Ideas)

	case key.Matches(msg, m.keys.Idea):
		m.editingIdea = true
		return m, m.ideaInput.Focus()
	}

	return m, nil
}

func (m Model) handleIdeaKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editingIdea = false
		m.ideaInput.Blur()
		m.ideaInput.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if _, err := m.deps.Ideas.Capture(m.ideaInput.Value()); err != nil {
			return m, m.setError(err)
		}
		if m.deps.Counters != nil {
			m.deps.Counters.IdeaCaptured()
		}
		m.editingIdea = false
		m.ideaInput.Blur()
		m.ideaInput.Reset()
		m.ideaState = m.deps.Ideas.State()
		return m, loadDashboardCmd(m.deps.Actions, m.deps.Ideas)
	}

	var cmd tea.Cmd
	m.ideaInput, cmd = m.ideaInput.Update(msg)
	return m, cmd
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panel.Flow == share.FlowSelecting {
		return m.handleTeamKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Cancel):
		m.deps.Share.Close()
		m.deps.Assistant.Close()

	case key.Matches(msg, m.keys.Capture):
		if m.toggling {
			return m, nil
		}
		m.toggling = true
		return m, toggleCaptureCmd(m.deps.Assistant)

	case key.Matches(msg, m.keys.Reset):
		m.deps.Share.Close()
		m.deps.Assistant.Reset()

	case key.Matches(msg, m.keys.Save):
		if err := m.deps.Share.Save(m.session); err != nil && !errors.Is(err, share.ErrNotAvailable) {
			cmd = m.setError(err)
		}

	case key.Matches(msg, m.keys.Share):
		if err := m.deps.Share.Share(m.session); err != nil && !errors.Is(err, share.ErrNotAvailable) {
			cmd = m.setError(err)
		}

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		m.response, cmd = m.response.Update(msg)
		return m, cmd

	default:
		return m, nil
	}

	m.refresh()
	return m, cmd
}

// handleTeamKey drives the share-with-team checkboxes.
func (m Model) handleTeamKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch s := msg.String(); {
	case len(s) == 1 && s[0] >= '1' && s[0] <= '9':
		if err := m.deps.Share.ToggleTeam(int(s[0] - '1')); err != nil && !errors.Is(err, share.ErrUnknownTeam) {
			cmd = m.setError(err)
		}

	case key.Matches(msg, m.keys.Confirm):
		if err := m.deps.Share.Confirm(); err != nil {
			cmd = m.setError(err)
		}

	case key.Matches(msg, m.keys.Cancel):
		m.deps.Share.Cancel()

	default:
		return m, nil
	}

	m.refresh()
	return m, cmd
}

func (m *Model) openDialog(mode assistant.Mode) {
	m.deps.Share.Close()
	m.deps.Assistant.Open(mode, m.deps.MeetingTitle)
	m.notice = ""
	m.refresh()
}

func (m Model) sidebarWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(24, m.width*30/100)
}

func (m Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.sidebarWidth()-3)
}

func (m Model) mainHeight() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + dividers(2) + error(1) + footer(1)
	return max(8, m.height-5)
}

func (m Model) dialogWidth() int {
	if m.width == 0 {
		return 70
	}
	return max(40, min(m.width-4, 96))
}

func (m Model) responseWidth() int {
	return m.dialogWidth() - 6
}

func (m Model) responseHeight() int {
	return max(5, m.mainHeight()-14)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch {
	case m.notice != "":
		sections = append(sections, m.place(ui.NoticeStyle.Render(ui.ErrorStyle.Render(m.notice)+"\n\n"+
			ui.DimStyle.Render("press enter to dismiss"))))
	case m.dialogOpen():
		sections = append(sections, m.place(m.renderDialog()))
	default:
		sections = append(sections, m.renderMainContent())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) place(s string) string {
	return lipgloss.Place(m.width, m.mainHeight(), lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("EXECMIND")
	sub := ui.SubtitleStyle.Render(" · Executive Dashboard")
	if m.deps.MeetingTitle != "" {
		sub += ui.DimStyle.Render(" · next: " + m.deps.MeetingTitle)
	}
	return title + sub
}

func (m Model) renderMainContent() string {
	sideW := m.sidebarWidth()
	contentW := m.contentWidth()
	h := m.mainHeight()

	side := strings.Split(m.renderSidebar(sideW, h), "\n")
	content := strings.Split(m.renderContent(contentW, h), "\n")
	divider := ui.DividerStyle.Render("│")

	var rows []string
	for i := 0; i < h; i++ {
		l, r := strings.Repeat(" ", sideW), ""
		if i < len(side) {
			l = padRight(side[i], sideW)
		}
		if i < len(content) {
			r = content[i]
		}
		rows = append(rows, l+divider+" "+r)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderSidebar(width, height int) string {
	open := 0
	for _, a := range m.actions {
		if !a.Completed {
			open++
		}
	}

	var lines []string
	lines = append(lines, ui.SectionTitleStyle.Render(fmt.Sprintf("PENDING ACTIONS (%d)", open)))

	if len(m.actions) == 0 {
		lines = append(lines, ui.DimStyle.Render("  Nothing pending"))
	}
	for i, a := range m.actions {
		box := "[ ]"
		title := a.Title
		if a.Completed {
			box = "[x]"
			title = ui.DoneStyle.Render(title)
		}

		prefix := "  "
		if i == m.selectedAction {
			prefix = ui.SelectedStyle.Render("> ")
		}
		lines = append(lines, truncateToWidth(prefix+box+" "+title, width))
		meta := ui.DimStyle.Render("      "+a.DueDate+" · ") + ui.PriorityStyle(string(a.Priority)).Render(string(a.Priority))
		lines = append(lines, meta)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderContent(width, height int) string {
	var lines []string

	lines = append(lines, ui.SectionTitleStyle.Render("ASSISTANT"))
	lines = append(lines, "  "+ui.FooterKeyStyle.Render("p")+" "+assistant.ModePostMeeting.Title())
	lines = append(lines, "  "+ui.FooterKeyStyle.Render("m")+" "+assistant.ModePreMeeting.Title())
	lines = append(lines, "")

	lines = append(lines, ui.SectionTitleStyle.Render(fmt.Sprintf("IDEAS INBOX (%d)", len(m.ideas))))
	if m.editingIdea {
		lines = append(lines, "  "+m.ideaInput.View())
	}
	if m.ideaState.Capturing {
		lines = append(lines, "  "+m.spinner.View()+" "+ui.DimStyle.Render("Processing: "+m.ideaState.Draft))
	}
	if len(m.ideas) == 0 && !m.editingIdea {
		lines = append(lines, ui.DimStyle.Render("  Press i to capture an idea"))
	}
	for _, idea := range m.ideas {
		ts := ui.DimStyle.Render(idea.CapturedAt.Format("15:04"))
		for j, wl := range wrapText(idea.Text, max(10, width-10)) {
			if j == 0 {
				lines = append(lines, "  "+ts+" "+wl)
			} else {
				lines = append(lines, "        "+wl)
			}
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDialog() string {
	s := m.session
	w := m.responseWidth()

	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(s.Mode.Title()))
	b.WriteString("\n")
	if s.Mode == assistant.ModePostMeeting {
		b.WriteString(ui.DimStyle.Render(s.MeetingTitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.Capturing {
		b.WriteString(ui.ListeningDotStyle.Render("● LISTENING"))
	} else {
		b.WriteString(ui.IdleDotStyle.Render("○ " + string(s.Phase)))
	}
	b.WriteString("\n\n")

	question := s.TranscriptText()
	switch s.Phase {
	case assistant.PhaseListening:
		if question == "" && s.Interim == "" {
			b.WriteString(ui.DimStyle.Render("Press space and ask your question."))
		} else {
			b.WriteString(renderTranscript(question, s.Interim, s.Capturing, w))
		}

	case assistant.PhaseProcessing:
		b.WriteString(ui.DimStyle.Render(strings.Join(wrapText("“"+question+"”", w), "\n")))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " Thinking...")

	case assistant.PhaseResponse:
		b.WriteString(ui.DimStyle.Render(strings.Join(wrapText("“"+question+"”", w), "\n")))
		b.WriteString("\n\n")
		b.WriteString(m.response.View())
		if s.Response != nil && len(s.Response.Insights) > 0 {
			var badges []string
			for _, in := range s.Response.Insights {
				badges = append(badges, ui.InsightBadgeStyle.Render(in))
			}
			b.WriteString("\n\n")
			b.WriteString(strings.Join(badges, " "))
		}
		b.WriteString("\n\n")
		b.WriteString(m.renderActions())
	}

	return ui.DialogStyle.Width(m.dialogWidth()).Render(b.String())
}

// renderTranscript wraps the plain text first and styles each line, so no
// escape sequence spans a line break.
func renderTranscript(final, interim string, cursor bool, width int) string {
	type word struct {
		text  string
		style lipgloss.Style
	}
	var words []word
	for _, w := range strings.Fields(final) {
		words = append(words, word{w, ui.TranscriptStyle})
	}
	for _, w := range strings.Fields(interim) {
		words = append(words, word{w, ui.InterimTextStyle})
	}

	var plain []string
	for _, w := range words {
		plain = append(plain, w.text)
	}
	if cursor {
		plain = append(plain, "▌")
		words = append(words, word{"▌", ui.InterimTextStyle})
	}

	var lines []string
	i := 0
	for _, line := range wrapText(strings.Join(plain, " "), width) {
		var parts []string
		for range strings.Fields(line) {
			parts = append(parts, words[i].style.Render(words[i].text))
			i++
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderActions() string {
	save, shr := share.Labels(m.session.Mode)
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.ActionButtonStyle.Render("s "+save),
		" ",
		ui.ActionButtonStyle.Render("t "+shr),
	)

	var extra []string
	switch m.panel.Flow {
	case share.FlowSelecting:
		extra = append(extra, ui.SectionTitleStyle.Render("Share with:"))
		for i, t := range m.panel.Teams {
			box := "[ ]"
			if t.Selected {
				box = ui.SelectedStyle.Render("[x]")
			}
			extra = append(extra, fmt.Sprintf("  %s %s %s", ui.FooterKeyStyle.Render(fmt.Sprint(i+1)), box, t.Name))
		}
		if m.panel.CanConfirm() {
			extra = append(extra, ui.SelectedStyle.Render("  enter to share"))
		} else {
			extra = append(extra, ui.DimStyle.Render("  select at least one team"))
		}
	case share.FlowConfirmed:
		extra = append(extra, ui.ToastStyle.Render("✓ Shared with "+strings.Join(m.panel.SelectedTeams(), ", ")))
	}
	if m.panel.Toast != "" {
		extra = append(extra, ui.ToastStyle.Render("✓ "+m.panel.Toast))
	}

	if len(extra) == 0 {
		return buttons
	}
	return buttons + "\n" + strings.Join(extra, "\n")
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	var bindings []key.Binding

	switch {
	case m.notice != "":
		bindings = append(bindings, m.keys.Confirm)
	case m.editingIdea:
		bindings = append(bindings, m.keys.Confirm, m.keys.Cancel)
	case m.dialogOpen() && m.panel.Flow == share.FlowSelecting:
		bindings = append(bindings, key.NewBinding(key.WithHelp("1-9", "team")), m.keys.Confirm, m.keys.Cancel)
	case m.dialogOpen():
		bindings = append(bindings, m.keys.Capture, m.keys.Reset)
		if m.session.Phase == assistant.PhaseResponse {
			bindings = append(bindings, m.keys.Save, m.keys.Share, m.keys.ScrollUp)
		}
		bindings = append(bindings, m.keys.Cancel, m.keys.Quit)
	default:
		bindings = append(bindings, m.keys.PostMeeting, m.keys.PreMeeting, m.keys.Down, m.keys.Toggle, m.keys.Idea, m.keys.Quit)
	}

	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, ui.FooterKeyStyle.Render(h.Key)+ui.FooterDescStyle.Render(" "+h.Desc))
	}
	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
