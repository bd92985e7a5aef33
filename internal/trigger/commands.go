package trigger

import "strings"

// Allow list of commands accepted by the trigger box firmware.
var allowedCommands = []string{
	"??", // Query overall module information
	"?V", // Read firmware version
	"?N", // Read serial number
	"?B", // Read firmware build number

	// Clock
	"C?", // Query device clock (time since power-on)

	// Arming
	"A?", // Query arm state
	"A+", // Arm the response sensor
	"A-", // Disarm the response sensor

	// Output settings
	"O?", // Query output settings
	"OC", // Report events as CSV (clock,frame)
	"OJ", // Report events as JSON
	"OF", // Include the playback frame number with each event
	"Of", // Omit the playback frame number
	"OL", // Turn the event LED on
	"Ol", // Turn the event LED off

	// Sensitivity
	"S?", // Query sensor threshold
	"S+", // Raise sensor threshold
	"S-", // Lower sensor threshold

	// Frame counter
	"F?", // Query current playback frame counter
	"F!", // Reset the playback frame counter

	// Persistent memory
	"A!", // Save current configuration to persistent memory
	"AX", // Reset settings to factory defaults
}

// IsAllowedCommand reports whether command is in the firmware allow list.
// Clock sync commands take the form "C=<unix seconds>" and are allowed with
// any numeric payload.
func IsAllowedCommand(command string) bool {
	command = strings.TrimSpace(command)
	if strings.HasPrefix(command, "C=") {
		payload := command[2:]
		if payload == "" {
			return false
		}
		for _, r := range payload {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	for _, allowed := range allowedCommands {
		if command == allowed {
			return true
		}
	}
	return false
}
