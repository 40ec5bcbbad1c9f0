package interfaces

import "github.com/ternarybob/auspex/internal/models"

// EventSink receives progress events for one request. Implementations must
// preserve emission order; Send returning an error means the transport is
// gone and the request should wind down.
type EventSink interface {
	Send(event models.Event) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event models.Event) error

// Send calls f(event).
func (f EventSinkFunc) Send(event models.Event) error {
	return f(event)
}
