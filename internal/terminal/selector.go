package terminal

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/richhaase/hands/internal/domain"
)

// Styles for the comment selector UI.
var (
	selectorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15"))

	selectorItemStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	selectorCursorStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("236"))

	selectorCheckboxSelected   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[x]")
	selectorCheckboxUnselected = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("[ ]")

	selectorHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	selectorDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("7")).
				PaddingLeft(6)
)

// ErrNotInteractive is returned by RunSelector when stdin is not a terminal.
var ErrNotInteractive = errors.New("interactive selection requires a terminal")

// SelectorModel is the bubbletea model for choosing which tagged comments to process.
type SelectorModel struct {
	comments  []domain.TaggedComment
	selected  map[int]bool
	cursor    int
	confirmed bool
	quitted   bool
}

// NewSelector creates a selector with every comment selected.
func NewSelector(comments []domain.TaggedComment) SelectorModel {
	selected := make(map[int]bool, len(comments))
	for i := range comments {
		selected[i] = true
	}
	return SelectorModel{
		comments: comments,
		selected: selected,
	}
}

// Init implements tea.Model.
func (m SelectorModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.comments)-1 {
				m.cursor++
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			all := len(m.SelectedIndices()) == len(m.comments)
			for i := range m.comments {
				m.selected[i] = !all
			}
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.quitted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m SelectorModel) View() string {
	if len(m.comments) == 0 {
		return "No tagged comments found.\n"
	}

	var b strings.Builder

	b.WriteString(selectorTitleStyle.Render("Select comments to hand to the agent"))
	b.WriteString("\n\n")

	for i, c := range m.comments {
		checkbox := selectorCheckboxUnselected
		if m.selected[i] {
			checkbox = selectorCheckboxSelected
		}

		first, _, _ := strings.Cut(strings.TrimSpace(c.Comment), "\n")
		title := fmt.Sprintf("%s %s", checkbox, c.Location())
		if i == m.cursor {
			b.WriteString(selectorCursorStyle.Render(title))
		} else {
			b.WriteString(selectorItemStyle.Render(title))
		}
		b.WriteString("\n")

		if first != "" {
			b.WriteString(selectorDetailStyle.Render(Truncate(first, 70)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(selectorHelpStyle.Render("↑/↓ navigate • space toggle • a all/none • enter run • q quit"))
	b.WriteString("\n")

	return b.String()
}

// SelectedIndices returns the indices of selected comments in sorted order.
func (m SelectorModel) SelectedIndices() []int {
	indices := make([]int, 0, len(m.selected))
	for i, sel := range m.selected {
		if sel {
			indices = append(indices, i)
		}
	}
	slices.Sort(indices)
	return indices
}

// Selected returns the selected comments in their original order.
func (m SelectorModel) Selected() []domain.TaggedComment {
	out := make([]domain.TaggedComment, 0, len(m.selected))
	for _, i := range m.SelectedIndices() {
		out = append(out, m.comments[i])
	}
	return out
}

// Confirmed returns true if the user confirmed the selection.
func (m SelectorModel) Confirmed() bool {
	return m.confirmed
}

// Quitted returns true if the user quit without confirming.
func (m SelectorModel) Quitted() bool {
	return m.quitted
}

// RunSelector runs the interactive comment selector.
// Returns the chosen comments, nil if the user quit, or an error if stdin is
// not a TTY or the UI fails.
func RunSelector(comments []domain.TaggedComment) ([]domain.TaggedComment, error) {
	if !IsStdinTTY() {
		return nil, ErrNotInteractive
	}

	if len(comments) == 0 {
		return []domain.TaggedComment{}, nil
	}

	p := tea.NewProgram(NewSelector(comments))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("selector UI error: %w", err)
	}

	m, ok := finalModel.(SelectorModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	if m.Quitted() {
		return nil, nil
	}

	return m.Selected(), nil
}
