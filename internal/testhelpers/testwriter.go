// Package testhelpers holds small helpers shared by the test suites.
package testhelpers

import (
	"io"
	"strings"
	"testing"
)

// Writer implements io.Writer on top of t.Log so that server logs show up
// only for failed tests.
type Writer struct {
	t        *testing.T
	testDone chan struct{}
}

// NewWriter creates a Writer bound to the lifetime of t.
func NewWriter(t *testing.T) io.Writer {
	w := &Writer{
		t:        t,
		testDone: make(chan struct{}),
	}
	// Closed on cleanup so that late writes from leaked goroutines panic
	// instead of racing t.Log.
	t.Cleanup(func() {
		close(w.testDone)
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	select {
	case <-w.testDone:
		panic("testwriter: attempted to write after test completion. Did you remember to t.Cleanup(server.Shutdown)?")
	default:
		// Trailing newlines would double-space the test output.
		output := strings.TrimSuffix(string(p), "\n")
		if output != "" {
			w.t.Log(output)
		}
		return len(p), nil
	}
}
