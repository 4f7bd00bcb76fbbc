package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel frames lines in a box using the current theme.
func Panel(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// OK writes a success line to w. Status goes to stderr so stdout stays clean
// for JSON output.
func OK(w io.Writer, msg string) { fmt.Fprintln(w, Current().Success.Render("✔ "+msg)) }

func Fail(msg string) { fmt.Fprintln(os.Stderr, Current().Error.Render("✖ "+msg)) }
