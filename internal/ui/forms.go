package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/pleimann/matrixpush/internal/gate"
	"github.com/pleimann/matrixpush/internal/raster"
	"github.com/pleimann/matrixpush/internal/session"
)

// IsInteractive reports whether forms can be shown
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// formModel wraps huh form in Bubble Tea for proper escape handling
type formModel struct {
	form    *huh.Form
	aborted bool
}

func (m formModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, tea.Quit
	}

	return m, cmd
}

func (m formModel) View() string {
	if m.form.State == huh.StateCompleted {
		return ""
	}
	return m.form.View()
}

// runForm runs form until it completes or the user cancels. It returns
// false when cancelled.
func runForm(form *huh.Form) (bool, error) {
	form = form.WithTheme(customTheme()).WithShowHelp(false)

	p := tea.NewProgram(formModel{form: form})
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(formModel)
	return !m.aborted, nil
}

// Action is an entry of the interactive main menu
type Action string

const (
	ActionAddFiles   Action = "add"
	ActionRemove     Action = "remove"
	ActionDelay      Action = "delay"
	ActionPreview    Action = "preview"
	ActionSendImages Action = "send-images"
	ActionClear      Action = "clear"
	ActionText       Action = "text"
	ActionSendText   Action = "send-text"
	ActionStatus     Action = "status"
	ActionQuit       Action = "quit"
)

// ActionMenu asks what to do next. Only actions that make sense for the
// current state are offered; the send actions only while their gate is open.
func ActionMenu(s session.Snapshot) (Action, error) {
	options := []huh.Option[Action]{
		huh.NewOption("Add image files", ActionAddFiles),
	}
	if len(s.Sources) > 0 {
		options = append(options, huh.NewOption("Remove an image", ActionRemove))
	}
	if s.DelayEnabled {
		options = append(options, huh.NewOption(fmt.Sprintf("Change delay (%s ms)", s.Delay), ActionDelay))
	}
	if len(s.Sources) > 0 {
		options = append(options,
			huh.NewOption("Preview images", ActionPreview),
			huh.NewOption("Clear images", ActionClear),
		)
	}
	if s.Validity.ImageSubmitEnabled() {
		options = append(options, huh.NewOption(SuccessStyle.Render("Send images"), ActionSendImages))
	}
	options = append(options, huh.NewOption("Edit text", ActionText))
	if s.Validity.TextSubmitEnabled() {
		options = append(options, huh.NewOption(SuccessStyle.Render("Send text"), ActionSendText))
	}
	options = append(options,
		huh.NewOption("Show status", ActionStatus),
		huh.NewOption("Quit", ActionQuit),
	)

	var action Action
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("matrixpush").
				Description(fmt.Sprintf("Display %s (esc to quit)", s.Geometry)).
				Options(options...).
				Value(&action),
		),
	)

	ok, err := runForm(form)
	if err != nil {
		return ActionQuit, err
	}
	if !ok {
		return ActionQuit, nil
	}
	return action, nil
}

// PathPrompt asks for one or more file paths separated by spaces
func PathPrompt() ([]string, bool, error) {
	var value string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Image files").
				Description("Paths separated by spaces (esc to cancel)").
				Value(&value).
				Validate(func(s string) error {
					if len(strings.Fields(s)) == 0 {
						return fmt.Errorf("enter at least one path")
					}
					return nil
				}),
		),
	)

	ok, err := runForm(form)
	if err != nil || !ok {
		return nil, false, err
	}
	return strings.Fields(value), true, nil
}

// DelayPrompt edits the shared delay. validate stores and checks every
// keystroke so the gate follows the field.
func DelayPrompt(current string, lo, hi int, validate func(string) error) (bool, error) {
	value := current

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Delay").
				Description(fmt.Sprintf("Milliseconds between images, %d to %d", lo, hi)).
				Value(&value).
				Validate(validate),
		),
	)

	return runForm(form)
}

// RemovePrompt asks which batch entry to drop
func RemovePrompt(sources []*raster.Source) (int, bool, error) {
	if len(sources) == 0 {
		return 0, false, fmt.Errorf("no images to remove")
	}

	options := make([]huh.Option[int], len(sources))
	for i, src := range sources {
		label := fmt.Sprintf("%s  %s", IndexStyle.Render(fmt.Sprintf("[%d]", i)), src.String())
		options[i] = huh.NewOption(label, i)
	}

	var index int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Remove image").
				Description("esc to cancel").
				Options(options...).
				Value(&index),
		),
	)

	ok, err := runForm(form)
	if err != nil || !ok {
		return 0, false, err
	}
	return index, true, nil
}

// TextFields are the text form values. Each setter stores and validates
// its field, like the inline checks of a web form.
type TextFields struct {
	Text  string
	Color string
	Mode  string

	SetText  func(string) error
	SetColor func(string) error
	SetMode  func(string) error
}

// TextForm edits the text, color and mode fields
func TextForm(f *TextFields) (bool, error) {
	modes := make([]huh.Option[string], 0, len(gate.Modes))
	for _, m := range gate.Modes {
		modes = append(modes, huh.NewOption(m.String(), m.String()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Text").
				Value(&f.Text).
				Validate(f.SetText),
			huh.NewInput().
				Title("Color").
				Description("#RRGGBB, black turns the LEDs off").
				Value(&f.Color).
				Validate(f.SetColor),
			huh.NewSelect[string]().
				Title("Mode").
				Description("static text wraps, scrolling text stays on one line").
				Options(modes...).
				Value(&f.Mode).
				Validate(f.SetMode),
		),
	)

	return runForm(form)
}

// Confirm asks a yes/no question
func Confirm(title string) (bool, error) {
	var yes bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Send").
				Negative("Cancel").
				Value(&yes),
		),
	)

	ok, err := runForm(form)
	if err != nil || !ok {
		return false, err
	}
	return yes, nil
}

// customTheme returns a custom huh theme matching our style palette
func customTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(lipgloss.Color("#F9FAFB"))
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)

	return t
}
