package units

import (
	"math"
	"strconv"
	"strings"
)

// Decimal is a real value that always serializes with a fractional part,
// so 7 hours is rendered as 7.0 rather than 7.
type Decimal float64

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(FormatDecimal(float64(d))), nil
}

func (d Decimal) String() string {
	return FormatDecimal(float64(d))
}

// ScaledToReal decodes the vendor's value×10^exponent encoding. Callers round.
func ScaledToReal(value int64, exponent int) float64 {
	return float64(value) * math.Pow10(exponent)
}

// Round1 rounds to one decimal place. Ties go to even on the exact binary
// value, which is what strconv does when asked for a fixed precision.
func Round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// RoundInt rounds half to even.
func RoundInt(v float64) int {
	return int(math.RoundToEven(v))
}

// FormatDecimal renders the shortest representation of v, keeping a ".0"
// suffix for whole numbers.
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEInN") {
		s += ".0"
	}
	return s
}

// FormatMeasurement renders a reading as "75.5 kg", or "18.2%" for percentages.
func FormatMeasurement(real float64, unit string) string {
	v := FormatDecimal(Round1(real))
	if unit == "%" {
		return v + "%"
	}
	return v + " " + unit
}

func MetersToKilometers(meters float64) Decimal {
	return Decimal(Round1(meters / 1000))
}

func SecondsToHours(seconds float64) Decimal {
	return Decimal(Round1(seconds / 3600))
}

// SecondsToMinutes truncates toward zero. Sleep latencies have always been
// reported this way and existing consumers depend on it.
func SecondsToMinutes(seconds float64) int {
	return int(seconds / 60)
}

// SpanMinutes is the rounded number of minutes between two Unix timestamps.
func SpanMinutes(start, end int64) int {
	return RoundInt(float64(end-start) / 60)
}
