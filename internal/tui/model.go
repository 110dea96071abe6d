// Package tui is the interactive week view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
	"github.com/theakshaypant/dayview/internal/layout"
	"github.com/theakshaypant/dayview/internal/store"
)

const (
	// editDelay is how long a new appointment waits before its editor opens.
	editDelay = 200 * time.Millisecond

	// LocalGroup is the group of appointments created in the view.
	LocalGroup = "Local"

	fetchTimeout = 30 * time.Second
)

// Options configures NewModel.
type Options struct {
	Providers []core.Provider
	Store     *store.Memory
	Fetch     core.FetchOptions
	Grid      grid.Config
	// Refresh schedules provider reloads. Nil disables them.
	Refresh cron.Schedule
	Logger  *zap.Logger
	// Start is any day of the first range shown. Zero means today.
	Start time.Time
	Now   func() time.Time
}

// Model is the Bubble Tea model for the TUI
type Model struct {
	engine    *layout.Engine
	store     *store.Memory
	providers []core.Provider
	fetch     core.FetchOptions
	rng       layout.Range
	appts     []core.Appointment
	keys      KeyMap
	schedule  cron.Schedule
	log       *zap.Logger
	now       func() time.Time

	width    int
	height   int
	loading  bool
	err      error
	status   string
	scrolled bool

	editor     textinput.Model
	editing    *layout.EditTarget
	detail     viewport.Model
	showDetail bool
	showHelp   bool
}

// Messages
type loadedMsg struct {
	rng   layout.Range
	appts []core.Appointment
	err   error
}

type pendingEditMsg struct {
	edit layout.PendingEdit
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	opts.Grid.Normalize()

	start := opts.Start
	if start.IsZero() {
		start = opts.Now()
	}

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 200

	return Model{
		engine:    layout.NewEngine(opts.Grid, layout.WithLogger(opts.Logger)),
		store:     opts.Store,
		providers: opts.Providers,
		fetch:     opts.Fetch,
		rng:       initialRange(start, opts.Grid.Days),
		keys:      DefaultKeyMap,
		schedule:  opts.Refresh,
		log:       opts.Logger,
		now:       opts.Now,
		loading:   true,
		editor:    editor,
		detail:    viewport.New(0, 0),
	}
}

// initialRange anchors full weeks on Monday and shorter ranges on t.
func initialRange(t time.Time, days int) layout.Range {
	if days == 7 {
		return layout.WeekRange(t, days)
	}
	return layout.NewRange(t, days)
}

// Engine exposes the layout engine driving the view.
func (m Model) Engine() *layout.Engine { return m.engine }

// Range returns the days on screen.
func (m Model) Range() layout.Range { return m.rng }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), scheduleRefresh(m.schedule, m.now()), clockTick())
}

// load fetches every provider into the store and resolves the range.
func (m Model) load() tea.Cmd {
	rng, providers, st, opts, log := m.rng, m.providers, m.store, m.fetch, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		opts.Start, opts.End = rng.Start, rng.End()
		var errs error
		for _, p := range providers {
			appts, err := p.FetchAppointments(ctx, opts)
			if err != nil {
				log.Warn("provider fetch failed", zap.String("provider", p.ID()), zap.Error(err))
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				if len(appts) == 0 {
					continue
				}
			}
			errs = multierr.Append(errs, st.SyncAppointments(ctx, p.ID(), appts))
		}

		appts, err := st.Resolve(ctx, rng.Start, rng.End())
		return loadedMsg{rng: rng, appts: appts, err: multierr.Append(errs, err)}
	}
}

// clientSize is the area left for the grid inside the app padding, the
// header line and the help bar.
func (m Model) clientSize() grid.Size {
	return grid.Size{
		Width:  max(0, m.width-AppStyle.GetHorizontalFrameSize()),
		Height: max(0, m.height-AppStyle.GetVerticalFrameSize()-2),
	}
}

// origin is where the grid's (0, 0) sits on screen.
func (m Model) origin() (int, int) {
	return AppStyle.GetPaddingLeft(), AppStyle.GetPaddingTop() + 1
}

// relayout runs a pass over the current appointments. It does nothing while
// a title is being edited.
func (m *Model) relayout() {
	if m.width == 0 {
		return
	}
	client := m.clientSize()
	_, err := m.engine.ComputeLayout(m.rng, m.appts, client)
	if errors.Is(err, layout.ErrEditInProgress) {
		return
	}
	if err != nil {
		rejected := multierr.Errors(err)
		for _, e := range rejected {
			m.log.Debug("appointment not laid out", zap.Error(e))
		}
		m.status = fmt.Sprintf("%d appointment(s) with invalid times or ids", len(rejected))
	}
	if !m.scrolled {
		m.scrolled = true
		m.engine.Grid().ScrollToStartHour(client.Height)
		m.relayout()
		return
	}
	m.updateDetail()
}

// reload re-reads the store without contacting providers.
func (m *Model) reload() {
	appts, err := m.store.Resolve(context.Background(), m.rng.Start, m.rng.End())
	if err != nil {
		m.err = err
		return
	}
	m.appts = appts
	m.relayout()
}

func (m *Model) setRange(r layout.Range) tea.Cmd {
	m.rng = r
	m.loading = true
	m.reload()
	return m.load()
}

func (m *Model) scroll(fn func(g *grid.Model, viewH int)) {
	if m.engine.Editing() {
		return
	}
	fn(m.engine.Grid(), m.clientSize().Height)
	m.relayout()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		client := m.clientSize()
		m.detail.Width = max(10, client.Width-4)
		m.detail.Height = max(1, client.Height-2)
		m.relayout()
		return m, nil

	case loadedMsg:
		if !msg.rng.Start.Equal(m.rng.Start) || msg.rng.Days != m.rng.Days {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.appts = msg.appts
		m.relayout()
		return m, nil

	case refreshMsg:
		next := scheduleRefresh(m.schedule, time.Time(msg))
		if m.engine.Editing() {
			m.log.Debug("scheduled refresh skipped while editing")
			return m, next
		}
		m.loading = true
		return m, tea.Batch(m.load(), next)

	case clockMsg:
		return m, clockTick()

	case pendingEditMsg:
		t, ok := m.engine.RunPendingEdit(msg.edit)
		if !ok {
			return m, nil
		}
		return m, m.openEditor(t)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.editing != nil {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.showDetail {
		return m, nil
	}
	ox, oy := m.origin()
	x, y := msg.X-ox, msg.Y-oy

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(func(g *grid.Model, h int) { g.ScrollBy(false, h) })
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(func(g *grid.Model, h int) { g.ScrollBy(true, h) })
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.editing != nil {
			m.finishEdit(false)
		}
		m.engine.SelectAt(x, y, msg.Alt)
		m.updateDetail()
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.finishEdit(false)
		return m, nil
	case tea.KeyEsc:
		m.finishEdit(true)
		return m, nil
	case tea.KeyCtrlC:
		m.finishEdit(true)
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// With a time range selected, typing starts a new appointment.
	if m.engine.Selection().Kind == layout.SelectDateRange && startsTitle(msg) {
		return m, m.newAppointment(msg.Runes[0])
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.updateDetail()

	case key.Matches(msg, m.keys.ScrollUp):
		if m.showDetail {
			m.detail.ViewUp()
			break
		}
		m.scroll(func(g *grid.Model, h int) { g.ScrollBy(false, h) })

	case key.Matches(msg, m.keys.ScrollDown):
		if m.showDetail {
			m.detail.ViewDown()
			break
		}
		m.scroll(func(g *grid.Model, h int) { g.ScrollBy(true, h) })

	case key.Matches(msg, m.keys.PageUp):
		m.scroll(func(g *grid.Model, h int) { g.ScrollPage(false, h) })

	case key.Matches(msg, m.keys.PageDown):
		m.scroll(func(g *grid.Model, h int) { g.ScrollPage(true, h) })

	case key.Matches(msg, m.keys.NextWeek):
		return m, m.setRange(m.rng.Shift(7))

	case key.Matches(msg, m.keys.PrevWeek):
		return m, m.setRange(m.rng.Shift(-7))

	case key.Matches(msg, m.keys.NextDay):
		return m, m.setRange(m.rng.Shift(1))

	case key.Matches(msg, m.keys.PrevDay):
		return m, m.setRange(m.rng.Shift(-1))

	case key.Matches(msg, m.keys.Today):
		r := initialRange(m.now(), m.rng.Days)
		if r.Start.Equal(m.rng.Start) {
			m.scroll(func(g *grid.Model, h int) { g.ScrollToStartHour(h) })
			return m, nil
		}
		return m, m.setRange(r)

	case key.Matches(msg, m.keys.NextView):
		m.cycleSelection(1)

	case key.Matches(msg, m.keys.PrevView):
		m.cycleSelection(-1)

	case key.Matches(msg, m.keys.SelectSlot):
		m.selectFirstSlot()

	case key.Matches(msg, m.keys.Clear):
		m.engine.ClearSelection()
		m.showDetail = false

	case key.Matches(msg, m.keys.Edit):
		sel := m.engine.Selection()
		if sel.Kind != layout.SelectAppointment {
			m.status = "select an appointment to edit"
			return m, nil
		}
		t, err := m.engine.BeginEdit(sel.AppointmentID)
		if err != nil {
			m.status = editRefusal(err)
			return m, nil
		}
		return m, m.openEditor(t)

	case key.Matches(msg, m.keys.Open):
		if a, ok := m.selected(); ok && a.MeetingLink != "" {
			return m, openURL(a.MeetingLink)
		}

	case key.Matches(msg, m.keys.ViewEvent):
		if a, ok := m.selected(); ok && a.URL != "" {
			return m, openURL(a.URL)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

// startsTitle reports whether msg is a letter or digit typed on its own.
func startsTitle(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return false
	}
	r := msg.Runes[0]
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func editRefusal(err error) string {
	switch {
	case errors.Is(err, layout.ErrLocked):
		return "appointment is read-only"
	case errors.Is(err, layout.ErrNotVisible):
		return "appointment is not on screen"
	default:
		return err.Error()
	}
}

// newAppointment stores a local appointment over the selected range titled
// with r, selects it and schedules its editor.
func (m *Model) newAppointment(r rune) tea.Cmd {
	sel := m.engine.Selection()
	a := core.Appointment{
		ID:         uuid.NewString(),
		ProviderID: store.LocalProviderID,
		Calendar:   core.Calendar{ID: store.LocalProviderID, Name: LocalGroup},
		Title:      string(r),
		Status:     core.StatusNoResponse,
		Start:      sel.Start,
		End:        sel.End,
		Group:      LocalGroup,
	}
	if err := m.store.Add(a); err != nil {
		m.err = err
		return nil
	}
	m.log.Debug("appointment created", zap.String("id", a.ID), zap.Time("start", a.Start))

	m.reload()
	m.engine.SelectAppointment(a.ID)
	p, err := m.engine.ScheduleEdit()
	if err != nil {
		return nil
	}
	return tea.Tick(editDelay, func(time.Time) tea.Msg {
		return pendingEditMsg{edit: p}
	})
}

func (m *Model) openEditor(t layout.EditTarget) tea.Cmd {
	m.editing = &t
	m.editor.SetValue(t.Appointment.Title)
	m.editor.CursorEnd()
	m.editor.Width = max(1, t.Bounds.Width-1)
	m.status = ""
	return m.editor.Focus()
}

// finishEdit closes the editor, storing the title unless cancel is set.
func (m *Model) finishEdit(cancel bool) {
	res, ok := m.engine.FinishEdit(m.editor.Value(), cancel)
	m.editing = nil
	m.editor.Blur()
	if !ok {
		return
	}
	if title := strings.TrimSpace(res.Title); !res.Cancelled && title != "" {
		if err := m.store.SetTitle(res.ID, title); err != nil {
			m.err = err
		}
	}
	m.reload()
}

func (m *Model) selected() (core.Appointment, bool) {
	sel := m.engine.Selection()
	if sel.Kind != layout.SelectAppointment {
		return core.Appointment{}, false
	}
	v, ok := m.engine.Cache().Lookup(sel.AppointmentID)
	return v.Appointment, ok
}

// cycleSelection moves the selection through the views of the latest pass,
// banners first, scrolling same-day views into sight.
func (m *Model) cycleSelection(step int) {
	views := append(m.engine.Cache().Banners(), m.engine.Cache().SameDay()...)
	if len(views) == 0 {
		return
	}
	idx := -1
	sel := m.engine.Selection()
	for i, v := range views {
		if sel.Kind == layout.SelectAppointment && v.Appointment.ID == sel.AppointmentID {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(views) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + step + len(views)) % len(views)
	}
	v := views[idx]
	m.engine.SelectAppointment(v.Appointment.ID)

	area := m.engine.Grid().TrueRect(m.engine.Client())
	if !v.Banner && !area.Intersects(v.Rect) {
		hour := v.Appointment.Start.Hour()
		m.scroll(func(g *grid.Model, h int) { g.SetScroll(hour*g.HourHeight(), h) })
	}
	m.updateDetail()
}

// selectFirstSlot selects the first visible slot of today, or of the first
// day when today is not shown.
func (m *Model) selectFirstSlot() {
	day := grid.CalendarDays(m.rng.Start, m.now())
	if day < 0 || day >= m.rng.Days {
		day = 0
	}
	col := m.engine.DayRect(day)
	start := m.engine.TimeAt(col.X, col.Y)
	m.engine.SelectRange(start, start.Add(m.engine.Grid().SlotDuration()))
}

func (m *Model) updateDetail() {
	a, ok := m.selected()
	if !ok {
		m.detail.SetContent(lipgloss.NewStyle().Foreground(mutedColor).Render("No appointment selected"))
		return
	}
	m.detail.SetContent(detailContent(a, m.detail.Width, m.now()))
	m.detail.GotoTop()
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.showHelp:
		content = m.renderHelpPanel()
	case m.showDetail:
		client := m.clientSize()
		content = DetailPanelStyle.
			Width(max(10, client.Width-2)).
			Height(max(1, client.Height-2)).
			Render(m.detail.View())
	default:
		var edit *editBox
		if m.editing != nil {
			edit = &editBox{bounds: m.editing.Bounds, value: m.editor.Value()}
		}
		content = renderDayView(m.engine, m.now(), edit)
	}

	return AppStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderHelp()),
	)
}

func (m Model) renderHeader() string {
	last := m.rng.Day(m.rng.Days - 1)
	dates := m.rng.Start.Format("Mon Jan 2")
	if m.rng.Days > 1 {
		dates += " - " + last.Format("Mon Jan 2")
	}
	dates += last.Format(", 2006")

	parts := []string{
		HeaderStyle.Render("dayview"),
		lipgloss.NewStyle().Foreground(mutedColor).Render(dates),
	}
	if m.loading {
		parts = append(parts, CalendarBadgeStyle.Render("loading..."))
	}
	switch {
	case m.err != nil:
		parts = append(parts, ErrorStyle.Render(firstLine(m.err.Error())))
	case m.status != "":
		parts = append(parts, CalendarBadgeStyle.Render(m.status))
	}
	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().MaxWidth(max(1, m.clientSize().Width)).Render(line)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (m Model) renderHelp() string {
	if m.editing != nil {
		return HelpStyle.Render(HelpKeyStyle.Render("enter") + " save  •  " + HelpKeyStyle.Render("esc") + " cancel")
	}

	var keys []string
	if m.engine.Selection().Kind == layout.SelectDateRange {
		keys = append(keys, HelpKeyStyle.Render("a-z 0-9")+" new appointment")
	}
	for _, b := range m.keys.ShortHelp() {
		keys = append(keys, HelpKeyStyle.Render(b.Help().Key)+" "+b.Help().Desc)
	}
	fullLine := strings.Join(keys, "  •  ")

	if lipgloss.Width(fullLine) > m.clientSize().Width {
		return HelpStyle.Render(HelpKeyStyle.Render("?") + " help")
	}
	return HelpStyle.Render(fullLine)
}

func (m Model) renderHelpPanel() string {
	header := lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		Render("Keyboard Shortcuts")

	lines := []string{""}
	for _, b := range m.keys.FullHelp() {
		lines = append(lines, HelpKeyStyle.Render(fmt.Sprintf("  %-12s", b.Help().Key))+" "+b.Help().Desc)
	}
	lines = append(lines,
		HelpKeyStyle.Render(fmt.Sprintf("  %-12s", "click"))+" select slot or appointment",
		HelpKeyStyle.Render(fmt.Sprintf("  %-12s", "alt+click"))+" select an hour",
		HelpKeyStyle.Render(fmt.Sprintf("  %-12s", "a-z 0-9"))+" with a slot selected, start a new appointment",
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render("  Press any key to close"),
	)

	client := m.clientSize()
	return DetailPanelStyle.Width(max(10, client.Width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(lines, "\n")),
	)
}
