package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Pick shows a full-screen list of options filtered as the user types and
// returns the one chosen with Enter.
func Pick(title string, options []Option) (*Option, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no options to select")
	}
	result, err := tea.NewProgram(newPickModel(title, options)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := result.(pickModel)
	if !ok || m.selected == nil {
		return nil, ErrCanceled
	}
	return m.selected, nil
}

type pickModel struct {
	title    string
	options  []Option
	filter   textinput.Model
	list     list.Model
	selected *Option
}

func newPickModel(title string, options []Option) pickModel {
	filter := textinput.New()
	filter.Placeholder = "Filter..."
	filter.Prompt = "> "
	filter.Focus()

	lst := list.New(optionItems(options), list.NewDefaultDelegate(), 0, 0)
	lst.SetShowTitle(false)
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)

	return pickModel{
		title:   title,
		options: options,
		filter:  filter,
		list:    lst,
	}
}

func (m pickModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(optionItem); ok {
				chosen := Option(item)
				m.selected = &chosen
				return m, tea.Quit
			}
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(max(msg.Width-2, 20), max(msg.Height-6, 4))
		return m, nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.list.SetItems(optionItems(filterOptions(m.options, m.filter.Value())))
		m.list.ResetSelected()
	}
	return m, cmd
}

func (m pickModel) View() string {
	status := fmt.Sprintf("%d of %d", len(m.list.Items()), len(m.options))
	help := "type to filter, up/down navigate, Enter=select, Esc=cancel"
	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n%s\n", m.title, m.filter.View(), m.list.View(), status, help)
}

// filterOptions keeps options whose name, ID or detail contains every
// whitespace-separated word of query, ignoring case.
func filterOptions(options []Option, query string) []Option {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return options
	}
	var out []Option
	for _, opt := range options {
		haystack := strings.ToLower(opt.Name + " " + opt.ID + " " + opt.Detail)
		matched := true
		for _, w := range words {
			if !strings.Contains(haystack, w) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, opt)
		}
	}
	return out
}

type optionItem Option

func (o optionItem) Title() string       { return o.Name }
func (o optionItem) Description() string { return o.Detail }
func (o optionItem) FilterValue() string { return o.Name }

func optionItems(options []Option) []list.Item {
	items := make([]list.Item, 0, len(options))
	for _, opt := range options {
		items = append(items, optionItem(opt))
	}
	return items
}
