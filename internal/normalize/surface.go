package normalize

import "strings"

var (
	dirtCourses = map[string]bool{
		"D": true, "DIRT": true, "FAST": true, "SLOPPY": true,
		"MUDDY": true, "GOOD": true, "SEALED": true, "FROZEN": true,
	}

	turfCourses = map[string]bool{
		"T": true, "TURF": true, "FIRM": true, "GOOD TO FIRM": true,
		"YIELDING": true, "SOFT": true, "HEAVY": true, "GRASS": true,
		"LAWN": true,
	}

	syntheticCourses = map[string]bool{
		"S": true, "SYNTH": true, "SYNTHETIC": true, "TAPETA": true,
		"POLYTRACK": true, "FIBRESAND": true, "CUSHION": true,
		"PRO-RIDE": true,
	}

	trackConditions = map[string]string{
		"FAST": "FAST", "FT": "FAST", "F": "FAST",
		"GOOD": "GOOD", "GD": "GOOD", "G": "GOOD",
		"SLOPPY": "SLOPPY", "SL": "SLOPPY", "SLPY": "SLOPPY",
		"MUDDY": "MUDDY", "MY": "MUDDY", "MD": "MUDDY",
		"WF": "WET_FAST", "WET FAST": "WET_FAST",
		"FIRM": "FIRM", "FM": "FIRM",
		"YIELDING": "YIELDING", "YL": "YIELDING", "Y": "YIELDING",
		"SOFT": "SOFT", "SF": "SOFT",
		"HEAVY": "HEAVY", "HV": "HEAVY",
	}
)

// CourseType buckets a raw course or surface token into DIRT, TURF,
// SYNTHETIC or UNKNOWN. Condition words double as surface hints in some
// sources, so the dirt and turf sets carry them too.
func CourseType(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return "UNKNOWN"
	}
	switch {
	case dirtCourses[cleaned]:
		return "DIRT"
	case turfCourses[cleaned]:
		return "TURF"
	case syntheticCourses[cleaned]:
		return "SYNTHETIC"
	default:
		return "UNKNOWN"
	}
}

// TrackCondition maps a raw going token onto the canonical condition
// vocabulary. Empty input is UNKNOWN; anything unmapped is OTHER.
func TrackCondition(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return "UNKNOWN"
	}
	if cond, ok := trackConditions[cleaned]; ok {
		return cond
	}
	return "OTHER"
}
