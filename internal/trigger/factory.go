package trigger

import (
	"go.bug.st/serial"
)

// NewRealTriggerMux creates a TriggerMux instance backed by a real serial
// port at the given path using the provided serial options.
func NewRealTriggerMux(path string, opts PortOptions) (*TriggerMux[serial.Port], error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return NewTriggerMux[serial.Port](port), nil
}
