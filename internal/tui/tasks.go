package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/pgdispatch/internal/tui/components"
)

// Task is one named unit of work shown as a progress row.
type Task struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// Outcome is the terminal state of a Task.
type Outcome struct {
	Name    string
	Result  string
	Err     error
	Elapsed time.Duration
}

// RunTasks runs all tasks concurrently and returns their outcomes in task order.
// Interactive terminals get a spinner per task; otherwise plain lines are written to out.
func RunTasks(ctx context.Context, title string, tasks []Task, out io.Writer) []Outcome {
	if IsInteractive() {
		return runInteractive(ctx, title, tasks, out)
	}
	return runPlain(ctx, tasks, NewProgressDisplay(out))
}

func runTask(ctx context.Context, t Task) Outcome {
	start := time.Now()
	result, err := t.Run(ctx)
	return Outcome{Name: t.Name, Result: result, Err: err, Elapsed: time.Since(start)}
}

func runAll(ctx context.Context, tasks []Task, done func(int, Outcome)) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = runTask(ctx, t)
			done(i, outcomes[i])
		}()
	}
	wg.Wait()
	return outcomes
}

func runPlain(ctx context.Context, tasks []Task, display *ProgressDisplay) []Outcome {
	var mu sync.Mutex
	for _, t := range tasks {
		display.Start(t.Name)
	}
	return runAll(ctx, tasks, func(_ int, o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		if o.Err != nil {
			display.Error(o.Name, o.Err, o.Elapsed)
			return
		}
		display.Success(o.Name, o.Result, o.Elapsed)
	})
}

func runInteractive(ctx context.Context, title string, tasks []Task, out io.Writer) []Outcome {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newTasksModel(title, tasks), tea.WithOutput(out))

	result := make(chan []Outcome, 1)
	go func() {
		result <- runAll(ctx, tasks, func(i int, o Outcome) {
			program.Send(taskDoneMsg{index: i, outcome: o})
		})
	}()

	_, _ = program.Run()
	// An aborted view cancels the remaining tasks; outcomes still arrive.
	cancel()
	return <-result
}

type taskDoneMsg struct {
	index   int
	outcome Outcome
}

type tasksModel struct {
	title   string
	rows    []components.Spinner
	pending int
	keys    KeyMap
}

func newTasksModel(title string, tasks []Task) tasksModel {
	rows := make([]components.Spinner, len(tasks))
	for i, t := range tasks {
		rows[i] = components.NewSpinner(t.Name)
	}
	return tasksModel{title: title, rows: rows, pending: len(tasks), keys: DefaultKeyMap()}
}

func (m tasksModel) Init() tea.Cmd {
	if m.pending == 0 {
		return tea.Quit
	}
	cmds := make([]tea.Cmd, len(m.rows))
	for i, r := range m.rows {
		cmds[i] = r.Init()
	}
	return tea.Batch(cmds...)
}

func (m tasksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	case taskDoneMsg:
		o := msg.outcome
		done := components.SpinnerDone(o.Result, o.Elapsed)
		if o.Err != nil {
			done = components.SpinnerFailed(o.Err, o.Elapsed)
		}
		m.rows[msg.index], _ = m.rows[msg.index].Update(done)
		m.pending--
		if m.pending == 0 {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmds []tea.Cmd
	for i := range m.rows {
		var cmd tea.Cmd
		m.rows[i], cmd = m.rows[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m tasksModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	for _, r := range m.rows {
		b.WriteString(r.View())
		b.WriteString("\n")
	}
	if m.pending > 0 {
		b.WriteString(HelpStyle.Render(m.keys.HelpText()))
		b.WriteString("\n")
	}
	return b.String()
}
