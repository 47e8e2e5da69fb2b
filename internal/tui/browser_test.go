package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/sessum/internal/config"
	"github.com/theirongolddev/sessum/internal/pipeline"
	"github.com/theirongolddev/sessum/internal/session"
	"github.com/theirongolddev/sessum/internal/summary"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedApp(t *testing.T, n int) App {
	t.Helper()
	app := NewApp(config.DefaultConfig(), summary.NewService(t.TempDir(), t.TempDir(), nil, nil), t.TempDir())
	app.width = 100
	app.height = 30
	app.loaded = true
	for i := 0; i < n; i++ {
		app.sessions = append(app.sessions, pipeline.Detail{
			Info: session.Info{Path: "/s", Rel: "s.jsonl", ModTime: time.Now()},
		})
	}
	return app
}

func TestNavigationClamps(t *testing.T) {
	app := loadedApp(t, 3)

	model, _ := app.Update(keyMsg("k"))
	app = model.(App)
	assert.Equal(t, 0, app.cursor, "up at top stays put")

	for i := 0; i < 5; i++ {
		model, _ = app.Update(keyMsg("j"))
		app = model.(App)
	}
	assert.Equal(t, 2, app.cursor, "down clamps at the last row")

	model, _ = app.Update(keyMsg("g"))
	app = model.(App)
	assert.Equal(t, 0, app.cursor)

	model, _ = app.Update(keyMsg("G"))
	app = model.(App)
	assert.Equal(t, 2, app.cursor)
}

func TestGenerationSingleSlot(t *testing.T) {
	app := loadedApp(t, 1)
	app.generating = true

	model, cmd := app.Update(keyMsg("s"))
	app = model.(App)
	assert.Nil(t, cmd, "second generation must not start")
	assert.Contains(t, app.status, "already in progress")
}

func TestStaleGenerationResultDiscarded(t *testing.T) {
	app := loadedApp(t, 1)
	app.genSeq = 2

	// A result from a cancelled run (older seq) changes nothing
	model, _ := app.Update(summaryDoneMsg{seq: 1, rec: &summary.Record{Body: "stale"}})
	app = model.(App)
	assert.False(t, app.viewing)

	// The current run's result opens the viewer
	model, _ = app.Update(summaryDoneMsg{seq: 2, rec: &summary.Record{Body: "fresh"}})
	app = model.(App)
	assert.True(t, app.viewing)
	assert.False(t, app.generating)
}

func TestGenerationFailureSetsStatus(t *testing.T) {
	app := loadedApp(t, 1)
	app.generating = true
	app.genSeq = 1

	model, _ := app.Update(summaryDoneMsg{seq: 1, err: assert.AnError})
	app = model.(App)
	assert.False(t, app.generating)
	assert.Contains(t, app.status, "summarize failed")
}

func TestSessionsLoaded(t *testing.T) {
	app := NewApp(config.DefaultConfig(), summary.NewService(t.TempDir(), t.TempDir(), nil, nil), t.TempDir())
	app.width = 100
	app.height = 30

	result := &pipeline.LoadResult{Sessions: []pipeline.Detail{
		{Info: session.Info{Rel: "a.jsonl"}},
	}}
	model, _ := app.Update(sessionsLoadedMsg{result: result, loadTime: time.Second})
	app = model.(App)

	require.True(t, app.loaded)
	assert.Len(t, app.sessions, 1)
	assert.Equal(t, 0, app.cursor)
}

func TestDefaultExtractDest(t *testing.T) {
	assert.Equal(t, "run-01.messages.jsonl", defaultExtractDest("/sessions/2026/run-01.jsonl"))
}
