package normalize

import "strings"

type Classification struct {
	Code          string
	Description   string
	Level         int
	PurseCategory string
}

type raceTypeRule struct {
	code  string
	level int
	match func(text string, words map[string]bool) bool
}

func word(token string, level int) raceTypeRule {
	return raceTypeRule{code: token, level: level, match: func(_ string, words map[string]bool) bool {
		return words[token]
	}}
}

func phrase(code string, level int, needles ...string) raceTypeRule {
	return raceTypeRule{code: code, level: level, match: func(text string, _ map[string]bool) bool {
		for _, n := range needles {
			if strings.Contains(text, n) {
				return true
			}
		}
		return false
	}}
}

// Evaluated top-down, first match wins. The compound maiden-claiming rule
// must stay ahead of every rule that matches bare CLAIMING, otherwise a
// maiden claimer classifies as an open claimer.
var raceTypeRules = []raceTypeRule{
	phrase("MCL", 1, "MAIDEN CLAIMING", "MAIDEN CLM"),

	word("G1", 10), word("G2", 9), word("G3", 8),
	word("GR1", 10), word("GR2", 9), word("GR3", 8),
	word("L", 7), word("LR", 7), word("LISTED", 7),
	word("STK", 6), word("STAKES", 6), word("BT", 6),
	word("ALW", 5), word("ALLOWANCE", 5), word("AOC", 5),
	word("N1X", 4), word("N2X", 3),
	word("CLM", 2), word("CLAIMING", 2), word("CL", 2),
	word("MSW", 1), word("MAIDEN", 1), word("MCL", 1), word("MSP", 1),

	phrase("MAIDEN", 1, "MAIDEN", "MSW"),
	phrase("CLAIMING", 2, "CLAIMING", "CLM"),
	phrase("ALLOWANCE", 5, "ALLOWANCE", "ALW"),
	phrase("STAKES", 6, "STAKES", "STK"),
}

// RaceType classifies a free-text race type description. Total over all
// inputs: unmatched text resolves to the UNKNOWN category at level 0.
func RaceType(raw string) Classification {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{Code: "UNKNOWN", Description: "Unknown", Level: 0, PurseCategory: "UNKNOWN"}
	}

	text := strings.ToUpper(trimmed)
	words := map[string]bool{}
	for _, w := range strings.Fields(text) {
		words[w] = true
	}

	for _, rule := range raceTypeRules {
		if rule.match(text, words) {
			return Classification{
				Code:          rule.code,
				Description:   trimmed,
				Level:         rule.level,
				PurseCategory: purseCategory(rule.level),
			}
		}
	}

	return Classification{Code: "UNKNOWN", Description: trimmed, Level: 0, PurseCategory: "UNKNOWN"}
}

func purseCategory(level int) string {
	switch {
	case level >= 8:
		return "GRADED_STAKES"
	case level >= 6:
		return "STAKES"
	case level >= 4:
		return "ALLOWANCE"
	case level >= 2:
		return "CLAIMING"
	case level == 1:
		return "MAIDEN"
	default:
		return "UNKNOWN"
	}
}

type TypeInfo struct {
	Code        string
	Description string
	Level       int
	Purse       string
}

var typeDescriptions = map[string]string{
	"MCL":       "Maiden Claiming",
	"G1":        "Grade 1 Stakes",
	"G2":        "Grade 2 Stakes",
	"G3":        "Grade 3 Stakes",
	"GR1":       "Grade 1 Stakes",
	"GR2":       "Grade 2 Stakes",
	"GR3":       "Grade 3 Stakes",
	"L":         "Listed Stakes",
	"LR":        "Listed Restricted Stakes",
	"LISTED":    "Listed Stakes",
	"STK":       "Stakes",
	"STAKES":    "Stakes",
	"BT":        "Black Type Stakes",
	"ALW":       "Allowance",
	"ALLOWANCE": "Allowance",
	"AOC":       "Allowance Optional Claiming",
	"N1X":       "Allowance, Non-Winners of One",
	"N2X":       "Allowance, Non-Winners of Two",
	"CLM":       "Claiming",
	"CLAIMING":  "Claiming",
	"CL":        "Claiming",
	"MSW":       "Maiden Special Weight",
	"MAIDEN":    "Maiden",
	"MSP":       "Maiden Special Weight",
	"UNKNOWN":   "Unknown",
}

// ReferenceTypes lists every classification code the rule list can produce,
// for seeding the race type lookup table.
func ReferenceTypes() []TypeInfo {
	seen := map[string]bool{}
	out := make([]TypeInfo, 0, len(raceTypeRules)+1)
	for _, r := range raceTypeRules {
		if seen[r.code] {
			continue
		}
		seen[r.code] = true
		out = append(out, TypeInfo{
			Code:        r.code,
			Description: typeDescriptions[r.code],
			Level:       r.level,
			Purse:       purseCategory(r.level),
		})
	}
	out = append(out, TypeInfo{Code: "UNKNOWN", Description: "Unknown", Level: 0, Purse: "UNKNOWN"})
	return out
}
