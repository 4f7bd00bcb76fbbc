package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/idilsaglam/todoproxy/internal/model"
)

// Treatment is how a row is drawn.
type Treatment int

const (
	TreatmentActive Treatment = iota
	TreatmentDanger
)

// TreatmentFor picks Danger for priority "high" and Active for anything else,
// including empty or unknown priorities.
func TreatmentFor(t model.Todo) Treatment {
	if t.IsHigh() {
		return TreatmentDanger
	}
	return TreatmentActive
}

func (tr Treatment) style(t Theme) lipgloss.Style {
	if tr == TreatmentDanger {
		return t.Danger
	}
	return t.Active
}

// RenderTable draws the header and one line per row. Only the rule under the
// header is drawn; the panel around the view supplies the frame.
func RenderTable(rows []model.Todo) string {
	t := Current()

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Name, r.Date, r.Priority})
	}

	return table.New().
		Border(t.Border).
		BorderStyle(t.Muted).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers("Name", "Date", "Priority").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 || row >= len(rows) {
				return t.Header.Padding(0, 1)
			}
			return TreatmentFor(rows[row]).style(t).Padding(0, 1)
		}).
		String()
}
