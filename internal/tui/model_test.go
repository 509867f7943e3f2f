package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/bucket-list/internal/bucket"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/internal/persistence"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	ready   chan struct{}
	notices chan persistence.Notice
	state   persistence.State
}

func newFakeSyncer() *fakeSyncer {
	return &fakeSyncer{
		ready:   make(chan struct{}),
		notices: make(chan persistence.Notice, 4),
		state:   persistence.StateReady,
	}
}

func (f *fakeSyncer) Ready() <-chan struct{}             { return f.ready }
func (f *fakeSyncer) Notices() <-chan persistence.Notice { return f.notices }
func (f *fakeSyncer) Status() persistence.Status         { return persistence.Status{State: f.state} }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func hydratedStore(t *testing.T, texts ...string) *bucket.Store {
	t.Helper()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	items := make([]models.GoalItem, 0, len(texts))
	for i, text := range texts {
		items = append(items, models.GoalItem{
			ID:        text,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return bucket.NewStore(bucket.WithItems(items))
}

func TestModel_LoadingScreen(t *testing.T) {
	store := bucket.NewStore()
	m := New(store, newFakeSyncer())

	assert.Contains(t, m.View(), "Loading")

	m = send(t, m, tab, runes("d"))
	assert.Equal(t, bucket.FilterAll, m.filter, "browsing keys wait for hydration")

	store.Hydrate(nil, true)
	m = send(t, m, readyMsg{})
	assert.NotContains(t, m.View(), "Loading")
	assert.Contains(t, m.View(), "No goals yet")
}

func TestModel_AddWhileLoadingSurvivesHydration(t *testing.T) {
	store := bucket.NewStore()
	m := New(store, newFakeSyncer())

	m = send(t, m, runes("a"))
	require.True(t, m.adding)
	assert.Contains(t, m.View(), "Add a goal")

	m = send(t, m, runes("Skydive"), enter)
	assert.False(t, m.adding)
	require.True(t, store.Loading())
	require.Equal(t, 1, store.Len())

	store.Hydrate([]models.GoalItem{{
		ID:        "remote",
		Text:      "Learn Go",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}, true)
	m = send(t, m, readyMsg{})

	view := m.View()
	assert.Contains(t, view, "Skydive")
	assert.Contains(t, view, "Learn Go")
	assert.Equal(t, 2, store.Len())
}

func TestModel_AddItem(t *testing.T) {
	store := hydratedStore(t)
	m := New(store, newFakeSyncer())

	m = send(t, m, runes("a"))
	require.True(t, m.adding)

	m = send(t, m, runes("Skydive"), enter)
	assert.False(t, m.adding)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "Skydive", store.Items()[0].Text)
	assert.Contains(t, m.View(), "Skydive")
}

func TestModel_AddBlankIsRejected(t *testing.T) {
	store := hydratedStore(t)
	m := New(store, newFakeSyncer())

	m = send(t, m, runes("a"), runes("   "), enter)
	assert.True(t, m.adding)
	assert.Contains(t, m.View(), "Text cannot be empty")
	assert.Equal(t, 0, store.Len())

	m = send(t, m, esc)
	assert.False(t, m.adding)
	assert.NotContains(t, m.View(), "Text cannot be empty")
}

func TestModel_ToggleAndCelebrate(t *testing.T) {
	store := hydratedStore(t, "Learn Go", "Skydive")
	m := New(store, newFakeSyncer())

	// Newest first: cursor starts on Skydive.
	m = send(t, m, space)
	item, ok := store.Get("Skydive")
	require.True(t, ok)
	assert.True(t, item.Completed())

	var done models.GoalItem
	select {
	case done = <-m.completed:
	default:
		t.Fatal("completion handler did not fire")
	}
	assert.Equal(t, "Skydive", done.Text)

	m = send(t, m, completedMsg(done))
	assert.Contains(t, m.View(), "Completed: Skydive")
	assert.Contains(t, m.View(), "50%")

	m = send(t, m, clearBanner{seq: m.bannerSeq - 1})
	assert.NotEmpty(t, m.banner, "stale timers leave a newer banner alone")

	m = send(t, m, clearBanner{seq: m.bannerSeq})
	assert.Empty(t, m.banner)
}

func TestModel_UncompleteDoesNotCelebrate(t *testing.T) {
	store := hydratedStore(t, "Skydive")
	m := New(store, newFakeSyncer())

	m = send(t, m, space)
	<-m.completed
	m = send(t, m, tab, tab) // completed filter
	m = send(t, m, space)

	item, _ := store.Get("Skydive")
	assert.False(t, item.Completed())
	select {
	case <-m.completed:
		t.Fatal("reopening an item must not celebrate")
	default:
	}
}

func TestModel_DeleteClampsCursor(t *testing.T) {
	store := hydratedStore(t, "Learn Go", "Skydive")
	m := New(store, newFakeSyncer())

	m = send(t, m, down)
	assert.Equal(t, 1, m.cursor)

	m = send(t, m, runes("d"))
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("Learn Go")
	assert.False(t, ok)
	assert.Equal(t, 0, m.cursor)

	m = send(t, m, runes("d"), runes("d"))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, m.cursor)
}

func TestModel_FilterCycles(t *testing.T) {
	store := hydratedStore(t, "Learn Go", "Skydive")
	m := New(store, newFakeSyncer())

	m = send(t, m, tab)
	assert.Equal(t, bucket.FilterActive, m.filter)
	assert.Contains(t, m.View(), "Active (2)")

	m = send(t, m, tab)
	assert.Equal(t, bucket.FilterCompleted, m.filter)
	assert.Contains(t, m.View(), "Nothing completed yet.")

	m = send(t, m, space)
	assert.Equal(t, 0, len(store.Filter(bucket.FilterCompleted)), "nothing to toggle in an empty view")

	m = send(t, m, tab)
	assert.Equal(t, bucket.FilterAll, m.filter)
}

func TestModel_Notices(t *testing.T) {
	store := hydratedStore(t)
	syncer := newFakeSyncer()
	m := New(store, syncer)

	m = send(t, m, noticeMsg(persistence.Notice{
		Kind:    persistence.NoticeError,
		Message: "Could not sync changes",
		Err:     errors.New("boom"),
	}))
	assert.Contains(t, m.View(), "Could not sync changes")

	syncer.state = persistence.StateLocalOnly
	assert.Contains(t, m.View(), "Offline")
}

func TestModel_Quit(t *testing.T) {
	m := New(hydratedStore(t), newFakeSyncer())

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_InitWaitsForSyncer(t *testing.T) {
	syncer := newFakeSyncer()
	m := New(bucket.NewStore(), syncer)
	require.NotNil(t, m.Init())

	close(syncer.ready)
	assert.Equal(t, readyMsg{}, waitReady(syncer)())

	syncer.notices <- persistence.Notice{Kind: persistence.NoticeWarning, Message: "offline"}
	assert.Equal(t, noticeMsg{Kind: persistence.NoticeWarning, Message: "offline"}, waitNotice(syncer)())
}
