package acquire

import (
	"context"

	"github.com/MercerHollowell/getpurs/internal/progress"
)

// Operation is a handle on one in-flight acquisition. Events delivers the
// ordered progress stream; Wait blocks for the terminal outcome. An
// operation terminates exactly once, by success, failure, or cancellation.
type Operation struct {
	id     string
	events chan progress.Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	log    Logger

	// terminal outcome; written before done closes.
	path string
	err  error
}

// ID is the operation's unique identifier, stable for its whole lifetime.
// Every log line the operation writes carries it.
func (o *Operation) ID() string {
	return o.id
}

// Events returns the progress stream. The channel closes after the terminal
// outcome is decided; a consumer that stops draining it cancels the
// operation implicitly because delivery blocks until cancellation.
func (o *Operation) Events() <-chan progress.Event {
	return o.events
}

// Cancel requests cooperative shutdown. Safe to call any number of times,
// from any goroutine, at any point in the lifecycle.
func (o *Operation) Cancel() {
	o.cancel()
}

// Wait blocks until the operation terminates and returns the installed
// binary path or the terminal error.
func (o *Operation) Wait() (string, error) {
	<-o.done
	return o.path, o.err
}

// emit delivers one event to the consumer. It returns false when the
// operation was cancelled before the consumer took the event; the caller
// must stop producing.
func (o *Operation) emit(ev progress.Event) bool {
	select {
	case o.events <- ev:
		return true
	case <-o.ctx.Done():
		return false
	}
}
