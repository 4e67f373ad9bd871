package normalize

import "strings"

// Distance converts an encoded distance value to whole yards. Source files
// encode fractional distances in a scaled integer form: with a furlong unit,
// 600 means 6.00 furlongs (hundredths); with a mile unit, 2400 means 1.5
// miles (1600 units per mile). Values below 100 are already whole units.
// Unrecognized units fall back to treating the value as furlongs.
func Distance(value float64, unit string) int {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "F", "FURLONG", "FURLONGS":
		if value >= 100 {
			return int(value / 100 * 220)
		}
		return int(value * 220)
	case "M", "MILE", "MILES":
		if value >= 100 {
			return int(value / 1600 * 1760)
		}
		return int(value * 1760)
	case "Y", "YARD", "YARDS":
		return int(value)
	default:
		return int(value * 220)
	}
}

// InferUnit guesses the unit family for a distance value that arrived
// without a unit token.
func InferUnit(value float64) string {
	switch {
	case value < 20:
		return "F"
	case value > 1000:
		return "Y"
	default:
		return "M"
	}
}
