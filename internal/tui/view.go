package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/sessum/internal/cli"
	"github.com/theirongolddev/sessum/internal/tui/components"
	"github.com/theirongolddev/sessum/internal/tui/theme"
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  sessum needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.extractForm != nil {
		return a.viewExtract()
	}

	if a.viewing {
		return a.viewSummary()
	}

	return a.viewList()
}

func (a App) viewLoading() string {
	t := theme.Active

	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if a.progressMax > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" Scanning sessions %d/%d", a.progress, a.progressMax)))
	} else {
		b.WriteString(mutedStyle.Render(" Discovering sessions..."))
	}
	b.WriteString("\n")
	return b.String()
}

func (a App) viewExtract() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render("Extract messages"))
	b.WriteString("\n  ")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(filepath.Base(a.extractPath)))
	b.WriteString("\n\n")
	b.WriteString(a.extractForm.View())
	return b.String()
}

func (a App) viewSummary() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(titleStyle.Render(a.viewTitle))
	b.WriteString("\n\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(components.RenderStatusBar(a.width, a.status))
	return b.String()
}

func (a App) viewList() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(titleStyle.Render("sessum"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d sessions in %s", len(a.sessions), a.sessionsDir)))
	if a.generating {
		b.WriteString("  ")
		b.WriteString(a.spinner.View())
	}
	b.WriteString("\n\n")

	if len(a.sessions) == 0 {
		b.WriteString(mutedStyle.Render("  No sessions found"))
		b.WriteString("\n")
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("  %4s  %4s  %8s  %6s  %s", "#", "AGE", "SIZE", "MSGS", "SESSION")))
		b.WriteString("\n")

		visible := a.visibleRows()
		offset := a.offset
		if a.cursor < offset {
			offset = a.cursor
		}
		if a.cursor >= offset+visible {
			offset = a.cursor - visible + 1
		}

		end := offset + visible
		if end > len(a.sessions) {
			end = len(a.sessions)
		}
		for i := offset; i < end; i++ {
			s := a.sessions[i]
			name := s.Rel
			if s.Cwd != "" {
				name = fmt.Sprintf("%s  %s", name, cli.Truncate(s.Cwd, 30))
			}
			// Styled after truncation so escape codes don't skew the width
			line := cli.Truncate(fmt.Sprintf("  %4d  %4s  %8s  %6d  %s",
				i+1, cli.FormatAge(s.ModTime), cli.FormatSize(s.Size), s.MessageCount, name), a.width)
			if i == a.cursor {
				b.WriteString(selectedStyle.Render(line))
			} else {
				b.WriteString(rowStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	body := b.String()

	// Pin the status bar to the bottom row
	lines := strings.Count(body, "\n")
	for lines < a.height-1 {
		body += "\n"
		lines++
	}
	body += components.RenderStatusBar(a.width, a.status)
	return body
}
