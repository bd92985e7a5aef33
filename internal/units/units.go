// Package units provides shared constants and validation for display units.
// Internally everything is centimetres, cm/s, and radians; conversion happens
// only at the reporting boundary.
package units

import "math"

// Angular rate unit constants
const (
	RadPerSec  = "rads"
	DegPerSec  = "degs"
	MradPerSec = "mrads"
)

// Speed unit constants
const (
	CMS = "cms"
	MPS = "mps"
	KPH = "kph"
)

// ValidAngularUnits contains all valid angular rate unit values
var ValidAngularUnits = []string{RadPerSec, DegPerSec, MradPerSec}

// ValidSpeedUnits contains all valid speed unit values
var ValidSpeedUnits = []string{CMS, MPS, KPH}

// IsValidAngular checks if the given unit is a recognised angular rate unit
func IsValidAngular(unit string) bool {
	for _, validUnit := range ValidAngularUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// IsValidSpeed checks if the given unit is a recognised speed unit
func IsValidSpeed(unit string) bool {
	for _, validUnit := range ValidSpeedUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidAngularUnitsString returns a comma-separated string of valid
// angular rate units for error messages
func GetValidAngularUnitsString() string {
	return "rads, degs, mrads"
}

// GetValidSpeedUnitsString returns a comma-separated string of valid speed
// units for error messages
func GetValidSpeedUnitsString() string {
	return "cms, mps, kph"
}

// ConvertAngularRate converts an angular rate from rad/s to the target units
func ConvertAngularRate(rateRadPerSec float64, targetUnits string) float64 {
	switch targetUnits {
	case DegPerSec:
		return rateRadPerSec * 180 / math.Pi
	case MradPerSec:
		return rateRadPerSec * 1000
	case RadPerSec:
		return rateRadPerSec
	default:
		return rateRadPerSec // default to rad/s if unknown unit
	}
}

// ConvertSpeed converts a speed from cm/s to the target units
func ConvertSpeed(speedCMS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedCMS / 100
	case KPH:
		return speedCMS * 0.036
	case CMS:
		return speedCMS
	default:
		return speedCMS // default to cm/s if unknown unit
	}
}
