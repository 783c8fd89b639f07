package watch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/glazier/internal/events"
)

func renderCommandStats(executed, failed map[string]int, theme Theme, width int) string {
	innerWidth := width - 4

	kinds := make(map[string]struct{}, len(executed)+len(failed))
	for k := range executed {
		kinds[k] = struct{}{}
	}
	for k := range failed {
		kinds[k] = struct{}{}
	}

	if len(kinds) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("COMMANDS"),
			theme.Dim.Render("  No commands executed yet"),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	var lines []string
	for _, kind := range names {
		line := fmt.Sprintf(" %-20s %s", kind,
			theme.StatusOK.Render(fmt.Sprintf("%4d ok", executed[kind])))
		if n := failed[kind]; n > 0 {
			line += "  " + theme.StatusFailed.Render(fmt.Sprintf("%d failed", n))
		}
		lines = append(lines, line)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("COMMANDS"),
		strings.Join(lines, "\n"),
	)
	return theme.Border.Width(innerWidth).Render(content)
}

func renderEventStream(eventLog []events.Event, theme Theme, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("EVENT STREAM"),
			theme.Dim.Render("  Waiting for events..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= 10 {
			break
		}
		lines = append(lines, formatEvent(e, theme))
	}

	eventsText := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("EVENT STREAM"),
		eventsText,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, theme Theme) string {
	ts := theme.Dim.Render(e.At.Format("15:04:05"))

	var typeStyle lipgloss.Style
	switch e.Type {
	case events.TypeCommandExecuted, events.TypeSessionStarted:
		typeStyle = theme.StatusOK
	case events.TypeCommandFailed:
		typeStyle = theme.StatusFailed
	case events.TypeSessionExited, events.TypePipelineStopped:
		typeStyle = theme.Highlight
	default:
		typeStyle = theme.Dim
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-18s", e.Type))

	return fmt.Sprintf("%s %s %s", ts, typeName, extractEventDesc(e))
}

func extractEventDesc(e events.Event) string {
	data := make(map[string]any)
	_ = json.Unmarshal(e.Data, &data)

	var parts []string
	if kind, ok := data["kind"].(string); ok {
		parts = append(parts, kind)
	}
	if class, ok := data["class"].(string); ok {
		parts = append(parts, "("+class+")")
	}
	if errText, ok := data["error"].(string); ok && errText != "" {
		if len(errText) > 40 {
			errText = errText[:40] + "..."
		}
		parts = append(parts, errText)
	}

	if len(parts) == 0 {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}

	return strings.Join(parts, " ")
}

func eventKind(e events.Event) string {
	var payload struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil || payload.Kind == "" {
		return "unknown"
	}
	return payload.Kind
}
