package utils

import (
	"sync"

	"pos-sync/src/logger"
)

// -----------------------------------------------------------------------------
// Notifier fans user-visible notices out to registered sinks (the device
// websocket hub, tests). Every notice is also logged.
// -----------------------------------------------------------------------------

type NoticeSink func(level, message string)

type Notifier struct {
	Logger *logger.Logger
	sinks  []NoticeSink
	mu     sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{Logger: log}
}

// -----------------------------------------------------------------------------

// AddSink registers a delivery target for subsequent notices.
func (n *Notifier) AddSink(sink NoticeSink) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sinks = append(n.sinks, sink)
}

// -----------------------------------------------------------------------------

// Notify delivers a notice to every sink. Sinks run on the caller's
// goroutine and must not block.
func (n *Notifier) Notify(level, message string) {
	switch level {
	case "warning":
		n.Logger.Warning("%s", message)
	case "error":
		n.Logger.Error("%s", message)
	default:
		n.Logger.Info("%s", message)
	}

	n.mu.RLock()
	sinks := make([]NoticeSink, len(n.sinks))
	copy(sinks, n.sinks)
	n.mu.RUnlock()

	for _, sink := range sinks {
		sink(level, message)
	}
}
