package components

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinner_PendingView(t *testing.T) {
	s := NewSpinner("future")

	if s.IsDone() {
		t.Fatal("new spinner should not be done")
	}
	if !strings.Contains(s.View(), "future") {
		t.Errorf("View() = %q, want label", s.View())
	}
	if s.Init() == nil {
		t.Error("Init() should start ticking")
	}
}

func TestSpinner_Success(t *testing.T) {
	s := NewSpinner("uni")
	s, cmd := s.Update(SpinnerDone("1", 3*time.Millisecond))

	if cmd != nil {
		t.Error("done spinner should not schedule commands")
	}
	if !s.IsDone() || !s.IsSuccess() {
		t.Fatal("spinner should be done and successful")
	}
	view := s.View()
	for _, want := range []string{"✓", "uni", "1", "3ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() = %q, want it to contain %q", view, want)
		}
	}
}

func TestSpinner_Failure(t *testing.T) {
	boom := errors.New("acquire timeout")
	s := NewSpinner("single")
	s, _ = s.Update(SpinnerFailed(boom, time.Second))

	if !s.IsDone() || s.IsSuccess() {
		t.Fatal("spinner should be done and failed")
	}
	if !errors.Is(s.Error(), boom) {
		t.Errorf("Error() = %v, want %v", s.Error(), boom)
	}
	if !strings.Contains(s.View(), "acquire timeout") {
		t.Errorf("View() = %q, want error text", s.View())
	}
}
