package logging

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

var (
	_ pgdispatch.Logger = (*ConsoleLogger)(nil)
	_ pgdispatch.Logger = (*NullLogger)(nil)
)

// syncBuffer guards a bytes.Buffer for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsoleLogger_Verbose_WhenEnabled(t *testing.T) {
	var buf syncBuffer
	logger := NewConsoleLoggerTo(&buf, true)

	logger.Verbose("connection %s opened", "abc")

	if !strings.Contains(buf.String(), "connection abc opened") {
		t.Errorf("Expected verbose message in output, got %q", buf.String())
	}
}

func TestConsoleLogger_Verbose_WhenDisabled(t *testing.T) {
	var buf syncBuffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Verbose("connection %s opened", "abc")

	if buf.String() != "" {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestConsoleLogger_InfoAndError(t *testing.T) {
	var buf syncBuffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Info("info message: %s", "value")
	logger.Error("error message: %d", 42)

	output := buf.String()
	if !strings.Contains(output, "info message: value") {
		t.Errorf("Expected info message, got %q", output)
	}
	if !strings.Contains(output, "error message: 42") {
		t.Errorf("Expected error message, got %q", output)
	}
}

func TestConsoleLogger_ConcurrentSafety(t *testing.T) {
	var buf syncBuffer
	logger := NewConsoleLoggerTo(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 30 {
		t.Errorf("Expected 30 lines, got %d", len(lines))
	}
}

func TestNullLogger_ConcurrentSafety(t *testing.T) {
	logger := NewNullLogger()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()
}

// Example demonstrates NullLogger usage
func ExampleNullLogger() {
	logger := NewNullLogger()
	logger.Info("This message is discarded")
	fmt.Println("Done")
	// Output:
	// Done
}
