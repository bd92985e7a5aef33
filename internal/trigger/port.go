package trigger

import (
	"io"
	"time"
)

// TriggerPorter defines the minimal interface needed for the trigger box
// serial connection. This abstraction enables unit testing without real
// hardware.
type TriggerPorter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutTriggerPorter extends TriggerPorter with timeout capabilities.
// This is an optional interface that ports may implement.
type TimeoutTriggerPorter interface {
	TriggerPorter
	// SetReadTimeout sets the read timeout for the port.
	SetReadTimeout(timeout time.Duration) error
}
