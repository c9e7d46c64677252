package live

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	if state.Delay > 0 {
		line += " | Delay: " + state.Delay.String()
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the status counts line.
func renderSummary(state State, noColor bool) string {
	counts := state.Counts
	line := "Processed: " + fmtInt(counts.Done) + "/" + fmtInt(state.Total) +
		" Correct: " + fmtInt(counts.Correct) +
		" Incorrect: " + fmtInt(counts.Incorrect) +
		" Unknown: " + fmtInt(counts.Unknown) +
		" Failed: " + fmtInt(counts.Failed) +
		" Skipped: " + fmtInt(counts.Skipped)
	return stylize(line, noColor, lipgloss.Color("242"))
}

func renderCheckpointLine(state State, noColor bool) string {
	if state.Checkpoint == "" {
		return ""
	}
	line := "Checkpoint " + state.Checkpoint
	if state.Resumed > 0 {
		line += " | resumed " + fmtInt(state.Resumed)
	}
	return stylize(line, noColor, lipgloss.Color("240"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.Interrupting && !state.Finished {
		return stylize("Interrupting: saving checkpoint...", noColor, lipgloss.Color("214"))
	}
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
