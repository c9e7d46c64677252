package live

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"enemeval/internal/runner"
)

func formatQuestionID(row QuestionRow) string {
	if row.ID != "" {
		return row.ID
	}
	return "-"
}

func formatIndex(index int) string {
	return "Q" + pad2(index+1)
}

func pad2(value int) string {
	if value >= 10 {
		return fmtInt(value)
	}
	return "0" + fmtInt(value)
}

func fmtInt(value int) string {
	return strconv.Itoa(value)
}

func formatStatus(row QuestionRow, noColor bool) string {
	label := statusLabel(row.Status)
	if noColor {
		return label
	}
	return statusStyle(row.Status).Render(label)
}

// statusLabel maps status codes to display labels.
func statusLabel(status runner.QuestionEventType) string {
	switch status {
	case runner.QuestionQueued:
		return "queued"
	case runner.QuestionRunning:
		return "running"
	case runner.QuestionCorrect:
		return "✅ correct"
	case runner.QuestionIncorrect:
		return "❌ incorrect"
	case runner.QuestionUnknown:
		return "❔ no key"
	case runner.QuestionFailed:
		return "⚠️ failed"
	case runner.QuestionSkipped:
		return "skipped"
	default:
		return string(status)
	}
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row QuestionRow, now time.Time) string {
	if row.WallTime > 0 {
		return formatDuration(row.WallTime)
	}
	if !row.FinishedAt.IsZero() && !row.StartedAt.IsZero() {
		return formatDuration(row.FinishedAt.Sub(row.StartedAt))
	}
	if !row.StartedAt.IsZero() && row.Status == runner.QuestionRunning {
		return formatDuration(now.Sub(row.StartedAt))
	}
	return ""
}

func statusStyle(status runner.QuestionEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case runner.QuestionCorrect:
		color = lipgloss.Color("42")
	case runner.QuestionIncorrect:
		color = lipgloss.Color("220")
	case runner.QuestionFailed:
		color = lipgloss.Color("196")
	case runner.QuestionUnknown:
		color = lipgloss.Color("39")
	case runner.QuestionRunning:
		color = lipgloss.Color("33")
	case runner.QuestionQueued, runner.QuestionSkipped:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
