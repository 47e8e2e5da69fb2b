package tui

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/sessum/internal/summary"
)

// startGeneration kicks off a background summary for the selected session.
// Only one generation may run at a time; a second request is rejected with
// a status message rather than queued.
func (a App) startGeneration(refresh bool) (tea.Model, tea.Cmd) {
	if a.generating {
		a.status = "a summary is already in progress ([x] to cancel)"
		return a, nil
	}

	sel, ok := a.selected()
	if !ok {
		return a, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.generating = true
	a.genCancel = cancel
	a.genSeq++
	seq := a.genSeq
	a.status = "summarizing " + filepath.Base(sel.Path)

	req := summary.Request{
		SessionPath:     sel.Path,
		PromptVariant:   a.cfg.Prompts.DefaultVariant,
		Model:           a.cfg.OpenRouter.Model,
		ReasoningEffort: a.cfg.OpenRouter.ReasoningEffort,
		Refresh:         refresh,
	}
	svc := a.svc

	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		defer cancel()
		rec, err := svc.Generate(ctx, req, summary.GenerateOptions{
			Temperature: a.cfg.OpenRouter.Temperature,
		})
		return summaryDoneMsg{seq: seq, rec: rec, err: err}
	})
}

// viewCached opens the viewer on the selected session's cached summary,
// if one exists. No remote call is made.
func (a App) viewCached() (tea.Model, tea.Cmd) {
	sel, ok := a.selected()
	if !ok {
		return a, nil
	}

	lookup := a.svc.GetCachedSummary(summary.Request{
		SessionPath:   sel.Path,
		PromptVariant: a.cfg.Prompts.DefaultVariant,
	})
	if !lookup.Found {
		a.status = "no cached summary ([s] to generate)"
		return a, nil
	}

	a.status = ""
	a.openViewer("Summary", lookup.Record.Body)
	return a, nil
}
