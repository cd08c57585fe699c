package metadata

import (
	"fmt"
	"math"
	"strconv"
)

// exposureFractionLimit is the threshold under which an exposure time is
// rendered as a clean "1/N" fraction. At or above ~0.25s the reciprocal
// produces awkward fractions near unity, so a decimal is used instead.
const exposureFractionLimit = 0.25001

// FormatURational renders an unsigned rational as "n/d".
func FormatURational(numerator, denominator uint32) string {
	return fmt.Sprintf("%d/%d", numerator, denominator)
}

// ApexShutterToSeconds converts an APEX ShutterSpeedValue to seconds.
func ApexShutterToSeconds(apex float64) float64 {
	return math.Pow(2, -apex)
}

// FormatExposureSeconds renders an exposure time in seconds: fast shutter
// speeds as "1/N", slower ones as a plain decimal.
func FormatExposureSeconds(seconds float64) string {
	if seconds > 0 && seconds < exposureFractionLimit {
		return fmt.Sprintf("1/%d", int64(0.5+1/seconds))
	}
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// ApexApertureToFNumber converts an APEX ApertureValue to an f-number.
func ApexApertureToFNumber(apex float64) float64 {
	return math.Pow(2, apex/2)
}

// FormatFNumber renders an f-number with one decimal place.
func FormatFNumber(fnumber float64) string {
	return fmt.Sprintf("%.1f", fnumber)
}
