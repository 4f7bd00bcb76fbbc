package ui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoproxy/internal/model"
)

// Options configure the viewer.
type Options struct {
	URL    string
	Client *http.Client
	Once   bool // print the table once and exit
}

type keyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Refresh, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// todosMsg carries a successful fetch.
type todosMsg []model.Todo

// fetchFailedMsg carries a failed fetch. It is dropped on purpose.
type fetchFailedMsg struct{ err error }

type modelTUI struct {
	rows   []model.Todo
	url    string
	client *http.Client
	ctx    context.Context

	renders int // times the table content changed
	help    help.Model
	width   int
}

func newModel(ctx context.Context, opt Options) modelTUI {
	return modelTUI{
		rows:   model.Placeholder(),
		url:    opt.URL,
		client: opt.Client,
		ctx:    ctx,
		help:   help.New(),
	}
}

func (m modelTUI) fetch() tea.Cmd {
	return func() tea.Msg {
		rows, err := FetchTodos(m.ctx, m.client, m.url)
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		return todosMsg(rows)
	}
}

// Init, Update and View implement Bubble Tea's Model on modelTUI.
func (m modelTUI) Init() tea.Cmd { return m.fetch() }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case todosMsg:
		if !slices.Equal(m.rows, msg) {
			m.rows = msg
			m.renders++
		}
		return m, nil
	case fetchFailedMsg:
		// keep showing the last good state
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m modelTUI) View() string {
	t := Current()
	return Panel([]string{
		t.Title.Render("Todos") + "  " + t.Muted.Render(fmt.Sprintf("%d rows", len(m.rows))),
		"",
		RenderTable(m.rows),
		"",
		m.help.View(keys),
	})
}

// Run shows the todo table. With Once set it prints a single snapshot to out;
// otherwise it starts the interactive program.
func Run(ctx context.Context, opt Options, out io.Writer) error {
	if opt.Once {
		rows := model.Placeholder()
		if fetched, err := FetchTodos(ctx, opt.Client, opt.URL); err == nil {
			rows = fetched
		}
		_, err := fmt.Fprintln(out, Panel([]string{Current().Title.Render("Todos"), "", RenderTable(rows)}))
		return err
	}

	p := tea.NewProgram(newModel(ctx, opt), tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(out))
	_, err := p.Run()
	return err
}
