package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth widens the area column when the terminal allows it.
func columnsForWidth(width int) []table.Column {
	area := 12
	if width > 90 {
		area = min(width-74, 24)
	}
	return []table.Column{
		{Title: "#", Width: 6},
		{Title: "ID", Width: 24},
		{Title: "Área", Width: area},
		{Title: "Status", Width: 16},
		{Title: "Tempo", Width: 10},
	}
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatIndex(row.Index),
			formatQuestionID(row),
			row.Area,
			formatStatus(row, noColor),
			formatRowDuration(row, now),
		})
	}
	return rows
}
