package main

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
)

type eventMsg struct {
	kind string
	text string
}

type model struct {
	lines    []string
	maxLines int
	counts   map[string]int
	total    int
	height   int
}

func newModel(maxLines int) model {
	return model{maxLines: maxLines, counts: map[string]int{}, height: 24}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "c":
			m.lines = nil
			m.counts = map[string]int{}
			m.total = 0
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case eventMsg:
		m.total++
		m.counts[msg.kind]++
		m.lines = append(m.lines, msg.text)
		if len(m.lines) > m.maxLines {
			m.lines = m.lines[len(m.lines)-m.maxLines:]
		}
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(cyanStyle.Render(fmt.Sprintf("\n  xevmon  %d events\n", m.total)))

	kinds := make([]string, 0, len(m.counts))
	for k := range m.counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		sb.WriteString(grayStyle.Render(fmt.Sprintf("  %-22s%6d\n", k, m.counts[k])))
	}
	sb.WriteString("\n")

	// last lines that fit below the counts
	n := m.height - len(kinds) - 6
	if n < 1 {
		n = 1
	}
	lines := m.lines
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		sb.WriteString("  " + l + "\n")
	}
	sb.WriteString(grayStyle.Render("\n  q: quit    c: clear\n"))
	return sb.String()
}

var cyanStyle = gloss.NewStyle().Bold(true).Foreground(gloss.Color("14"))
var grayStyle = gloss.NewStyle().Foreground(gloss.Color("#aaaaaa"))
