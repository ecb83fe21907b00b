package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTask(name, result string, err error) Task {
	return Task{Name: name, Run: func(context.Context) (string, error) { return result, err }}
}

func TestRunTasks_PlainOutput(t *testing.T) {
	t.Setenv("PGDISPATCH_NON_INTERACTIVE", "1")
	boom := errors.New("acquire timeout")

	var out bytes.Buffer
	outcomes := RunTasks(context.Background(), "probe", []Task{
		fixedTask("callback", "1", nil),
		fixedTask("future", "", boom),
	}, &out)

	require.Len(t, outcomes, 2)
	assert.Equal(t, "callback", outcomes[0].Name)
	assert.Equal(t, "1", outcomes[0].Result)
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, boom)

	text := out.String()
	assert.Contains(t, text, "• callback ...")
	assert.Contains(t, text, "✓ callback 1")
	assert.Contains(t, text, "✗ future acquire timeout")
}

func TestRunTasks_Concurrent(t *testing.T) {
	t.Setenv("PGDISPATCH_NON_INTERACTIVE", "1")

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	blocking := func(name string) Task {
		return Task{Name: name, Run: func(ctx context.Context) (string, error) {
			started <- struct{}{}
			<-release
			return "ok", nil
		}}
	}

	go func() {
		<-started
		<-started
		close(release)
	}()

	done := make(chan []Outcome, 1)
	go func() {
		done <- RunTasks(context.Background(), "probe", []Task{blocking("a"), blocking("b")}, &bytes.Buffer{})
	}()

	select {
	case outcomes := <-done:
		assert.Len(t, outcomes, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not run concurrently")
	}
}

func TestTasksModel_QuitsWhenAllDone(t *testing.T) {
	m := newTasksModel("probe", []Task{fixedTask("uni", "", nil), fixedTask("single", "", nil)})

	next, cmd := m.Update(taskDoneMsg{index: 0, outcome: Outcome{Name: "uni", Result: "1"}})
	assert.Nil(t, cmd)
	m = next.(tasksModel)
	assert.Equal(t, 1, m.pending)
	assert.Contains(t, m.View(), "abort")

	next, cmd = m.Update(taskDoneMsg{index: 1, outcome: Outcome{Name: "single", Err: errors.New("pool closed")}})
	m = next.(tasksModel)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	view := m.View()
	assert.Contains(t, view, "probe")
	assert.Contains(t, view, "✓")
	assert.Contains(t, view, "pool closed")
	assert.False(t, strings.Contains(view, "abort"), "finished view should hide help")
}

func TestTasksModel_QuitKey(t *testing.T) {
	m := newTasksModel("probe", []Task{fixedTask("uni", "", nil)})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTasksModel_EmptyQuitsImmediately(t *testing.T) {
	m := newTasksModel("probe", nil)
	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
