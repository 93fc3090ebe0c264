package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/shapesim/internal/scene"
)

// SceneBuilder builds the scene for a named preset.
type SceneBuilder func(name string) (*scene.Scene, error)

// Picker lists presets and hands over to the live view on enter.
type Picker struct {
	names  []string
	cursor int
	build  SceneBuilder
	live   *Model
	err    error
}

func NewPicker(names []string, build SceneBuilder) Picker {
	return Picker{names: names, build: build}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		p.cursor = (p.cursor + len(p.names) - 1) % len(p.names)
	case "down", "j":
		p.cursor = (p.cursor + 1) % len(p.names)
	case "enter":
		name := p.names[p.cursor]
		sc, err := p.build(name)
		if err != nil {
			p.err = err
			return p, nil
		}
		live := NewModel(sc, name)
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}
	st := newStyles(ThemeCyberpunk)
	var s strings.Builder
	s.WriteString(st.header.Render("SHAPESIM") + "\n")
	for i, n := range p.names {
		if i == p.cursor {
			s.WriteString(st.active.Render("> "+n) + "\n")
		} else {
			s.WriteString("  " + n + "\n")
		}
	}
	if p.err != nil {
		s.WriteString("\n" + st.failed.Render(fmt.Sprintf("error: %v", p.err)) + "\n")
	}
	s.WriteString(st.help.Render("↑↓:Select Enter:Start Q:Quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}

// RunPicker starts the preset menu.
func RunPicker(names []string, build SceneBuilder) error {
	if len(names) == 0 {
		return fmt.Errorf("no presets")
	}
	_, err := tea.NewProgram(NewPicker(names, build), tea.WithAltScreen()).Run()
	return err
}
