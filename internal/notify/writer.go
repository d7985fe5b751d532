package notify

import (
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints notifications to a writer, one per line. It is
// the interactive notifier for terminal sessions, where log records
// would be too noisy for messages the user must act on.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier that writes to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, "Error:", msg)
}

func (n *WriterNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, msg)
}
