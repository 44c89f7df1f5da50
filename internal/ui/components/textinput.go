package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// NumberInput wraps bubbles/textinput for entering percentages and scores.
// Keys other than digits and a decimal point are dropped.
type NumberInput struct {
	Model textinput.Model
}

// NewNumberInput creates a focused number input.
func NewNumberInput(placeholder string, maxWidth int) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return NumberInput{Model: ti}
}

// Init returns the initial command.
func (n NumberInput) Init() tea.Cmd {
	return n.Model.Focus()
}

// Update handles messages.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') && key[0] != '.' {
			return n, nil
		}
	}

	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the input.
func (n NumberInput) View() string {
	return n.Model.View()
}

// Value returns the trimmed input text.
func (n NumberInput) Value() string {
	return strings.TrimSpace(n.Model.Value())
}

// Empty reports whether nothing has been typed.
func (n NumberInput) Empty() bool {
	return n.Value() == ""
}

// FloatValue parses the input as a number.
func (n NumberInput) FloatValue() (float64, error) {
	return strconv.ParseFloat(n.Value(), 64)
}
