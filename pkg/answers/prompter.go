package answers

import (
	"github.com/pterm/pterm"
)

// Prompter asks the user for a single option value
type Prompter interface {
	// Input asks for a free-text value with a prefilled default
	Input(name, defaultValue string) (string, error)

	// Select asks the user to pick one of the choices
	Select(name string, choices []string, defaultChoice string) (string, error)
}

// terminalPrompter prompts on the controlling terminal via pterm
type terminalPrompter struct{}

// NewTerminalPrompter returns the interactive terminal prompter
func NewTerminalPrompter() Prompter {
	return terminalPrompter{}
}

func (terminalPrompter) Input(name, defaultValue string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultValue(defaultValue).
		Show(name)
}

func (terminalPrompter) Select(name string, choices []string, defaultChoice string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(choices).
		WithDefaultOption(defaultChoice).
		Show(name)
}
