package selectpartui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davetcode/goaw/resource"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type part struct {
	id   resource.PartID
	info resource.Part
}

func (p part) label() string { return fmt.Sprintf("%05d  %s", uint16(p.id), p.id.Name()) }

func (p part) Title() string       { return p.label() }
func (p part) FilterValue() string { return p.label() }

func (p part) Description() string {
	d := fmt.Sprintf("palette 0x%02X  code 0x%02X  shapes 0x%02X", p.info.Palette, p.info.Code, p.info.Video1)
	if p.info.Video2 != 0 {
		d += fmt.Sprintf(" + 0x%02X", p.info.Video2)
	}
	return d
}

// SelectPartModel - List of the game's parts, choosing one hands over to
// the model built by CreateApplicationModel.
type SelectPartModel struct {
	PartList               list.Model
	CreateApplicationModel func(resource.PartID) tea.Model
}

func New(hasPassword bool, create func(resource.PartID) tea.Model) SelectPartModel {
	var items []list.Item
	for _, id := range resource.AllParts() {
		if id >= resource.PartPassword && !hasPassword {
			continue
		}
		info, _ := resource.LookupPart(id)
		items = append(items, part{id: id, info: info})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Another World parts"
	return SelectPartModel{PartList: l, CreateApplicationModel: create}
}

func (m SelectPartModel) Init() tea.Cmd {
	return nil
}

func (m SelectPartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.PartList.FilterState() != list.Filtering {
				return m, tea.Quit
			}
		case "enter":
			p, selected := m.PartList.SelectedItem().(part)
			if selected && m.PartList.FilterState() != list.Filtering {
				newModel := m.CreateApplicationModel(p.id)
				return newModel, newModel.Init()
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.PartList.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.PartList, cmd = m.PartList.Update(msg)
	return m, cmd
}

func (m SelectPartModel) View() string {
	return docStyle.Render(m.PartList.View())
}
