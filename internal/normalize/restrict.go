package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var agePatterns = []struct {
	re      *regexp.Regexp
	maxSame bool
	hasMax  bool
}{
	{re: regexp.MustCompile(`(\d+)YO`), maxSame: true},
	{re: regexp.MustCompile(`(\d+)U`)},
	{re: regexp.MustCompile(`(\d+)\+`)},
	{re: regexp.MustCompile(`(\d+)-(\d+)`), hasMax: true},
	{re: regexp.MustCompile(`(\d+)&UP`)},
	{re: regexp.MustCompile(`(\d+) AND UP`)},
	{re: regexp.MustCompile(`(\d+) YEARS OLD AND UP`)},
}

// AgeRange parses an age restriction like "3YO", "4U" or "3-5" into a
// min/max pair. Open-ended restrictions leave max nil.
func AgeRange(raw string) (minAge, maxAge *int) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, nil
	}

	for _, p := range agePatterns {
		m := p.re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		lo, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		minAge = &lo
		if p.maxSame {
			hi := lo
			maxAge = &hi
		} else if p.hasMax && len(m) > 2 {
			if hi, err := strconv.Atoi(m[2]); err == nil {
				maxAge = &hi
			}
		}
		return minAge, maxAge
	}

	return nil, nil
}

type SexFlags struct {
	FilliesAndMares  bool
	ColtsAndGeldings bool
	FilliesOnly      bool
	MaresOnly        bool
	ColtsOnly        bool
	GeldingsOnly     bool
}

// SexRestriction parses a sex restriction phrase into flags. At most one
// flag is set; combined phrases are checked before their parts.
func SexRestriction(raw string) SexFlags {
	var flags SexFlags
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return flags
	}

	has := func(s string) bool { return strings.Contains(cleaned, s) }
	switch {
	case has("FILLIES AND MARES") || has("F&M"):
		flags.FilliesAndMares = true
	case has("FILLIES") && !has("MARES"):
		flags.FilliesOnly = true
	case has("MARES") && !has("FILLIES"):
		flags.MaresOnly = true
	case has("COLTS AND GELDINGS"):
		flags.ColtsAndGeldings = true
	case has("COLTS") && !has("GELDINGS"):
		flags.ColtsOnly = true
	case has("GELDINGS") && !has("COLTS"):
		flags.GeldingsOnly = true
	}
	return flags
}
