package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner is a labelled loading indicator that settles into a result line.
type Spinner struct {
	spinner spinner.Model
	label   string
	done    bool
	success bool
	result  string
	err     error
	elapsed time.Duration
	styles  spinnerStyles
}

type spinnerStyles struct {
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func defaultSpinnerStyles() spinnerStyles {
	return spinnerStyles{
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(10),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// NewSpinner creates a new spinner with the given label.
func NewSpinner(label string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Spinner{
		spinner: s,
		label:   label,
		styles:  defaultSpinnerStyles(),
	}
}

// Init implements tea.Model.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update implements tea.Model.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	switch msg := msg.(type) {
	case SpinnerDoneMsg:
		s.done = true
		s.success = msg.Success
		s.result = msg.Result
		s.err = msg.Err
		s.elapsed = msg.Elapsed
		return s, nil
	case spinner.TickMsg:
		if s.done {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

// View implements tea.Model.
func (s Spinner) View() string {
	label := s.styles.Label.Render(s.label)
	if !s.done {
		return s.spinner.View() + " " + label
	}
	took := s.styles.Muted.Render(fmt.Sprintf("(%s)", s.elapsed.Round(time.Millisecond)))
	if s.success {
		return s.styles.Success.Render("✓") + " " + label + " " + s.result + " " + took
	}
	return s.styles.Error.Render("✗") + " " + label + " " + s.styles.Error.Render(s.err.Error()) + " " + took
}

// SpinnerDoneMsg signals that the spinner operation is complete.
type SpinnerDoneMsg struct {
	Success bool
	Result  string
	Err     error
	Elapsed time.Duration
}

// SpinnerDone creates a success message.
func SpinnerDone(result string, elapsed time.Duration) SpinnerDoneMsg {
	return SpinnerDoneMsg{Success: true, Result: result, Elapsed: elapsed}
}

// SpinnerFailed creates a failure message.
func SpinnerFailed(err error, elapsed time.Duration) SpinnerDoneMsg {
	return SpinnerDoneMsg{Success: false, Err: err, Elapsed: elapsed}
}

// IsDone returns true if the spinner is done.
func (s Spinner) IsDone() bool {
	return s.done
}

// IsSuccess returns true if the spinner completed successfully.
func (s Spinner) IsSuccess() bool {
	return s.success
}

// Error returns the error if the spinner failed.
func (s Spinner) Error() error {
	return s.err
}
