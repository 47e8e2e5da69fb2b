package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/sessum/internal/session"
)

// extractValues backs the extract form fields.
type extractValues struct {
	dest      string
	overwrite bool
}

// openExtractForm opens the destination form for the selected session.
func (a App) openExtractForm() (tea.Model, tea.Cmd) {
	sel, ok := a.selected()
	if !ok {
		return a, nil
	}

	a.extractPath = sel.Path
	a.extractVals = extractValues{dest: defaultExtractDest(sel.Path)}

	a.extractForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Destination").
				Description("Path for the extracted message log").
				Value(&a.extractVals.dest).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("destination is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Overwrite if it exists?").
				Value(&a.extractVals.overwrite),
		),
	)
	if a.width > 0 {
		a.extractForm = a.extractForm.WithWidth(a.width)
	}
	return a, a.extractForm.Init()
}

func (a App) updateExtractForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.extractForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.extractForm = f
	}

	if a.extractForm.State == huh.StateCompleted {
		dest := strings.TrimSpace(a.extractVals.dest)
		overwrite := a.extractVals.overwrite
		source := a.extractPath
		a.extractForm = nil

		if !overwrite {
			if _, err := os.Stat(dest); err == nil {
				a.status = "refusing to overwrite " + dest
				return a, nil
			}
		}

		a.status = "extracting to " + dest
		return a, func() tea.Msg {
			count, err := session.WriteMessagesLog(source, dest)
			return extractDoneMsg{dest: dest, count: count, err: err}
		}
	}

	if a.extractForm.State == huh.StateAborted {
		a.extractForm = nil
		a.status = ""
		return a, nil
	}

	return a, cmd
}

// defaultExtractDest proposes <stem>.messages.jsonl in the working directory.
func defaultExtractDest(sessionPath string) string {
	base := filepath.Base(sessionPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + ".messages.jsonl"
}
