// Package tui is the interactive bucket list built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/bucket-list/internal/bucket"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/internal/persistence"
	"github.com/Dias221467/bucket-list/internal/ui"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// celebrationTTL is how long the completion banner stays up.
const celebrationTTL = 3 * time.Second

// Syncer is the part of the synchronizer the TUI observes.
type Syncer interface {
	Ready() <-chan struct{}
	Notices() <-chan persistence.Notice
	Status() persistence.Status
}

type (
	readyMsg     struct{}
	noticeMsg    persistence.Notice
	completedMsg models.GoalItem
	clearBanner  struct{ seq int }
)

type Model struct {
	store  *bucket.Store
	syncer Syncer
	keys   keyMap

	loading bool
	filter  bucket.FilterType
	cursor  int

	adding   bool
	input    textinput.Model
	inputErr string

	bar  progress.Model
	help help.Model

	notice    *persistence.Notice
	banner    string
	bannerSeq int

	completed chan models.GoalItem
}

// New builds the model and registers it for completion events on store.
func New(store *bucket.Store, syncer Syncer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Something you want to do..."
	ti.CharLimit = 200

	m := Model{
		store:     store,
		syncer:    syncer,
		keys:      defaultKeys,
		loading:   store.Loading(),
		filter:    bucket.FilterAll,
		input:     ti,
		bar:       ui.NewProgressBar(ui.DefaultBarWidth),
		help:      help.New(),
		completed: make(chan models.GoalItem, 8),
	}

	completed := m.completed
	store.SetCompletionHandler(func(item models.GoalItem) {
		select {
		case completed <- item:
		default:
		}
	})
	return m
}

// Run shows the list until the user quits or ctx is cancelled.
func Run(ctx context.Context, store *bucket.Store, syncer Syncer) error {
	p := tea.NewProgram(New(store, syncer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitReady(m.syncer),
		waitNotice(m.syncer),
		waitCompleted(m.completed),
	)
}

func waitReady(s Syncer) tea.Cmd {
	return func() tea.Msg {
		<-s.Ready()
		return readyMsg{}
	}
}

func waitNotice(s Syncer) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-s.Notices()
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func waitCompleted(ch <-chan models.GoalItem) tea.Cmd {
	return func() tea.Msg {
		return completedMsg(<-ch)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readyMsg:
		m.loading = false
		m.clampCursor()
		return m, nil

	case noticeMsg:
		n := persistence.Notice(msg)
		m.notice = &n
		return m, waitNotice(m.syncer)

	case completedMsg:
		m.bannerSeq++
		m.banner = fmt.Sprintf("🎉 Completed: %s", msg.Text)
		seq := m.bannerSeq
		return m, tea.Batch(
			waitCompleted(m.completed),
			tea.Tick(celebrationTTL, func(time.Time) tea.Msg { return clearBanner{seq: seq} }),
		)

	case clearBanner:
		if msg.seq == m.bannerSeq {
			m.banner = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		width := msg.Width - 20
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if _, ok := m.store.Add(m.input.Value()); !ok {
			m.inputErr = "Text cannot be empty"
			return m, nil
		}
		m.stopAdding()
		m.filter = bucket.FilterAll
		m.cursor = 0
		return m, nil
	case "esc":
		m.stopAdding()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inputErr = ""
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	// Adds made while loading are journaled by the store and survive hydration.
	if key.Matches(msg, m.keys.Add) {
		m.adding = true
		return m, m.input.Focus()
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.selected(); ok {
			m.store.Toggle(item.ID)
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok {
			m.store.Delete(item.ID)
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.cursor = 0
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) visible() []models.GoalItem {
	return m.store.Filter(m.filter)
}

func (m Model) selected() (models.GoalItem, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return models.GoalItem{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.loading {
		body := ui.TitleStyle.Render("Bucket List") + "\n\n" +
			ui.MutedStyle.Render("Loading your bucket list...")
		if m.adding {
			body += "\n" + m.addPanel()
		}
		return ui.PanelStyle.Render(body) + "\n"
	}

	views := m.store.Views()
	var b strings.Builder

	b.WriteString(ui.Header(views))
	b.WriteString("\n")
	b.WriteString(ui.ProgressLine(m.bar, views))
	b.WriteString("\n")
	b.WriteString(m.filterTabs())
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(ui.BannerStyle.Render(m.banner))
		b.WriteString("\n\n")
	}

	b.WriteString(m.listView(views))

	if m.adding {
		b.WriteString("\n")
		b.WriteString(m.addPanel())
	}

	if line := m.statusLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return ui.PanelStyle.Render(b.String()) + "\n"
}

func (m Model) addPanel() string {
	title := "Add a goal"
	if m.inputErr != "" {
		title += "  " + ui.ErrorStyle.Render(m.inputErr)
	}
	return ui.PanelStyle.Render(title + "\n" + m.input.View())
}

func (m Model) filterTabs() string {
	tabs := []bucket.FilterType{bucket.FilterAll, bucket.FilterActive, bucket.FilterCompleted}
	out := make([]string, 0, len(tabs))
	for _, f := range tabs {
		label := string(f)
		if f == m.filter {
			out = append(out, ui.SelectedStyle.Render(" "+label+" "))
		} else {
			out = append(out, ui.MutedStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(out, " ")
}

func (m Model) listView(views bucket.Views) string {
	var sections []section
	switch m.filter {
	case bucket.FilterActive:
		sections = []section{{"Active", views.Active, "Nothing left to do."}}
	case bucket.FilterCompleted:
		sections = []section{{"Completed", views.Completed, "Nothing completed yet."}}
	default:
		if views.Total() == 0 {
			return ui.MutedStyle.Render("No goals yet. Press a to add one.") + "\n"
		}
		sections = []section{
			{"Active", views.Active, "Nothing left to do."},
			{"Completed", views.Completed, "Nothing completed yet."},
		}
	}

	var b strings.Builder
	index := 0
	for _, s := range sections {
		b.WriteString(ui.AccentStyle.Render(fmt.Sprintf("%s (%d)", s.title, len(s.items))))
		b.WriteString("\n")
		if len(s.items) == 0 {
			b.WriteString("  " + ui.MutedStyle.Render(s.empty) + "\n")
		}
		for _, item := range s.items {
			prefix := "  "
			if index == m.cursor && !m.adding {
				prefix = ui.SelectedStyle.Render(">") + " "
			}
			b.WriteString(prefix + ui.ItemLine(item) + "\n")
			index++
		}
	}
	return b.String()
}

type section struct {
	title string
	items []models.GoalItem
	empty string
}

func (m Model) statusLine() string {
	if m.syncer.Status().State == persistence.StateLocalOnly {
		return ui.PendingStyle.Render("Offline: changes stay on this device")
	}
	if m.notice == nil {
		return ""
	}
	switch m.notice.Kind {
	case persistence.NoticeError:
		return ui.ErrorStyle.Render(m.notice.Message)
	case persistence.NoticeWarning:
		return ui.PendingStyle.Render(m.notice.Message)
	}
	return ui.MutedStyle.Render(m.notice.Message)
}
