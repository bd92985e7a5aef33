package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is one response report from the trigger box: the device clock in
// seconds since power-on and the stimulus playback frame at the moment the
// response sensor tripped.
type Event struct {
	Clock float64 `json:"clock"`
	Frame int     `json:"frame"`
}

// ParseEvent parses a CSV event line of the form "clock,frame", e.g.
// "12.345,87". Command echoes and status lines from the device do not match
// this shape and are reported as errors so callers can skip them.
func ParseEvent(line string) (Event, error) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return Event{}, fmt.Errorf("not an event line: %q", line)
	}

	clock, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Event{}, fmt.Errorf("invalid clock in event line %q: %w", line, err)
	}

	frame, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Event{}, fmt.Errorf("invalid frame in event line %q: %w", line, err)
	}
	if frame < 1 {
		return Event{}, fmt.Errorf("event frame must be >= 1, got %d", frame)
	}

	return Event{Clock: clock, Frame: frame}, nil
}
