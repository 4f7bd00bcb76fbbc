package model

// Todo is one row of the `todo` table.
// Rows are read only; nothing here creates or validates them.
type Todo struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
}

// PriorityHigh is the only priority value that changes how a row is drawn.
const PriorityHigh = "high"

// IsHigh reports whether the row gets the alert treatment.
func (t Todo) IsHigh() bool { return t.Priority == PriorityHigh }

// Placeholder is what the table shows before the first successful fetch.
func Placeholder() []Todo {
	return []Todo{{Name: "", Date: "", Priority: ""}}
}
