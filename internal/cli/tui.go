package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listLayerStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand opens an interactive walkthrough of a task.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [task.json]",
		Short: "Walk through a task box by box",
		Long: `Walk through a task box by box, in placement order.

The current box is shown with its position and size; boxes at the same
height as the current box are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.openTask(args[0])
			if err != nil {
				return err
			}
			if l.sess.Len() == 0 {
				printInfo("No boxes placed in %s", args[0])
				return nil
			}
			m := NewWalkthroughModel(args[0], l.sess.Container(), l.sess.Walkthrough())
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// WalkthroughModel - Interactive box walkthrough
// =============================================================================

// WalkthroughModel is the bubbletea model for stepping through placed boxes.
type WalkthroughModel struct {
	Title     string
	Container geom.Container
	Walk      *session.Walkthrough
	Height    int
	Offset    int
}

// NewWalkthroughModel creates a walkthrough model positioned on the first box.
func NewWalkthroughModel(title string, container geom.Container, w *session.Walkthrough) WalkthroughModel {
	return WalkthroughModel{Title: title, Container: container, Walk: w, Height: 15}
}

func (m WalkthroughModel) Init() tea.Cmd {
	return nil
}

func (m WalkthroughModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k", "left", "h":
			m.Walk.Prev()
		case "down", "j", "right", "l", " ":
			m.Walk.Next()
		case "home", "g":
			m.Walk.Select(0)
		case "end", "G":
			m.Walk.Select(m.Walk.Len() - 1)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *WalkthroughModel) scroll() {
	i := m.Walk.Index()
	if i < m.Offset {
		m.Offset = i
	}
	if i >= m.Offset+m.Height {
		m.Offset = i - m.Height + 1
	}
}

func (m WalkthroughModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s · container %s", m.Title, m.Container)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	boxes := m.Walk.Boxes()
	layer := m.Walk.Layer()
	end := min(m.Offset+m.Height, len(boxes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		bx := boxes[i]
		cursor := "  "
		if i == m.Walk.Index() {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, swatch(bx.Color), bx.ID, bx.Name, bx.Position.String(), bx.Size.String()})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "ID", "Name", "Position", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(boxes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Walk.Index():
				return listSelectedStyle
			case slices.Contains(layer, boxes[idx].ID):
				return listLayerStyle
			case idx < m.Walk.Index():
				return lipgloss.NewStyle()
			default:
				return listDimStyle
			}
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if cur, ok := m.Walk.Current(); ok {
		b.WriteString(describeBox(cur))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  same height: %s", strings.Join(layer, ", "))))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Walk.Index()+1, m.Walk.Len())))

	return b.String()
}
