package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks daemon health from /healthz polling.
type HealthState struct {
	Status          string
	InstanceID      string
	UptimeSeconds   int64
	SessionRunID    string
	SessionPid      int
	DroppableDepth  int
	GuaranteedDepth int
	Connected       bool
	LastCheck       time.Time
}

// Activity is a decaying dot meter that lights up on events and fades as
// the stream goes quiet.
type Activity struct {
	dots int
}

func (a *Activity) OnEvent() {
	a.dots = 5
}

func (a *Activity) Decay(lastEvent time.Time) {
	if a.dots == 0 {
		return
	}
	elapsed := time.Since(lastEvent)
	switch {
	case elapsed > 10*time.Second:
		a.dots = 0
	case elapsed > 8*time.Second:
		a.dots = 1
	case elapsed > 6*time.Second:
		a.dots = 2
	case elapsed > 4*time.Second:
		a.dots = 3
	case elapsed > 2*time.Second:
		a.dots = 4
	}
}

func (a Activity) Render(theme Theme) string {
	var result strings.Builder
	for i := 0; i < 5; i++ {
		if i < a.dots {
			result.WriteString(theme.ActivityOn.Render("●"))
		} else {
			result.WriteString(theme.ActivityOff.Render("○"))
		}
	}
	return result.String()
}

func renderHeader(health HealthState, spinnerView string, activity Activity, lastEvent time.Time, theme Theme, width int) string {
	innerWidth := width - 4

	statusText := theme.StatusOK.Render("HEALTHY")
	statusIcon := "✅"
	if !health.Connected {
		statusText = theme.StatusFailed.Render("CONNECTING")
		statusIcon = "🔌"
	} else if health.Status != "ok" && health.Status != "" {
		statusText = theme.StatusFailed.Render("DEGRADED")
		statusIcon = "⚠️"
	}

	uptime := time.Duration(health.UptimeSeconds) * time.Second

	lastEventStr := "never"
	if !lastEvent.IsZero() {
		ago := time.Since(lastEvent).Round(time.Second)
		lastEventStr = fmt.Sprintf("%s ago", ago)
	}

	clock := theme.Dim.Render(time.Now().Format("15:04:05"))
	titleText := fmt.Sprintf(" GLAZIER WATCH %s", spinnerView)

	titleWidth := lipgloss.Width(titleText)
	clockWidth := lipgloss.Width(clock)
	pad := innerWidth - titleWidth - clockWidth - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	session := "no session"
	if health.SessionRunID != "" {
		runID := health.SessionRunID
		if len(runID) > 8 {
			runID = runID[:8]
		}
		session = fmt.Sprintf("%s (pid %d)", runID, health.SessionPid)
	}

	statsLine := fmt.Sprintf(" %s %s  ⏱ %s  Session: %s  Queues: %d/%d",
		statusIcon, statusText,
		formatDuration(uptime),
		session,
		health.DroppableDepth,
		health.GuaranteedDepth,
	)

	activityLine := fmt.Sprintf(" Last event: %s %s",
		lastEventStr,
		activity.Render(theme),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleLine,
		statsLine,
		activityLine,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
