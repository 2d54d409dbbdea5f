package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/processor"
)

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	previewStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
)

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse processed docs in a terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), rootArg(args))
		},
	}
}

func (c *CLI) runBrowse(ctx context.Context, root string) error {
	ws, err := c.openWorkspace(ctx, root)
	if err != nil {
		return err
	}
	defer ws.runner.Close()

	opts := c.options(ws)
	opts.Mode = pipeline.ModeInteractive
	ix, res, err := c.process(ctx, ws, opts)
	if err != nil {
		return err
	}
	p, err := pipeline.Build(opts, nil)
	if err != nil {
		return err
	}

	m := NewBrowseModel(ix.All(), res.Errors, p)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// BrowseModel - documentable list with a processed-doc preview
// =============================================================================

// BrowseModel is the bubbletea model of the browse command.
type BrowseModel struct {
	Docs   []*corpus.Documentable
	Errors map[string]error
	Cursor int
	Offset int
	Height int
	Width  int

	// Source shows the source doc with tag highlights instead of the
	// processed doc.
	Source bool

	pipeline *processor.Pipeline
}

// NewBrowseModel creates a browse model over docs. Undocumented
// declarations without processed text are left out.
func NewBrowseModel(docs []*corpus.Documentable, errs map[string]error, p *processor.Pipeline) BrowseModel {
	var shown []*corpus.Documentable
	for _, d := range docs {
		if d.SourceHasDocumentation || d.Doc != "" {
			shown = append(shown, d)
		}
	}
	return BrowseModel{Docs: shown, Errors: errs, Height: 15, Width: 100, pipeline: p}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Docs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "tab", "s":
			m.Source = !m.Source
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("docsmith"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ source/processed  q quit"))
	b.WriteString("\n\n")

	if len(m.Docs) == 0 {
		b.WriteString(listDimStyle.Render("No documented declarations."))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Docs))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Docs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := "✓"
		if _, failed := m.Errors[d.ID]; failed {
			status = "✗"
		}
		rows = append(rows, []string{cursor, status, d.Path, string(d.Language)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Declaration", "Lang").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Docs) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if _, failed := m.Errors[m.Docs[idx].ID]; failed && col == 1 {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	list := t.Render()
	preview := previewStyle.Width(max(m.Width-lipgloss.Width(list)-4, 20)).Render(m.preview())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", preview))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Docs))))
	return b.String()
}

// preview renders the selected documentable.
func (m BrowseModel) preview() string {
	d := m.Docs[m.Cursor]
	var b strings.Builder
	title := "processed"
	if m.Source {
		title = "source"
	}
	b.WriteString(paneTitleStyle.Render(d.Path + " · " + title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(d.ID))
	b.WriteString("\n\n")

	switch {
	case m.Source && m.pipeline != nil:
		b.WriteString(renderHighlights(d.SourceDoc, m.pipeline.Highlights(d.SourceDoc)))
	case m.Source:
		b.WriteString(string(d.SourceDoc))
	default:
		b.WriteString(string(d.Doc))
	}
	if err, failed := m.Errors[d.ID]; failed {
		b.WriteString("\n\n")
		b.WriteString(StyleError.Render(errors.UserMessage(err)))
	}
	return b.String()
}
