// Package notify delivers user-facing notifications for request failures.
// The API client is the only producer; it emits exactly one notification
// per failed logical request, so implementations do not need to deduplicate.
package notify

import "log/slog"

// Notifier receives user-visible messages. Implementations must be safe
// for concurrent use.
type Notifier interface {
	// Error reports a failure the user should see.
	Error(msg string)

	// Info reports a neutral status message.
	Info(msg string)
}

// LogNotifier writes notifications through a slog.Logger. It is the
// default notifier for the CLI, where structured log output doubles as
// the user-facing channel.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Error(msg)
}

func (n *LogNotifier) Info(msg string) {
	n.logger.Info(msg)
}

// Discard is a Notifier that drops all messages. Useful in tests that
// assert behavior other than notification delivery.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Error(string) {}
func (discard) Info(string)  {}
