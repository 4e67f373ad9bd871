package normalize

import (
	"regexp"
	"strings"
)

var (
	equipmentSplit = regexp.MustCompile(`[,;/\s]+`)

	equipmentCodes = map[string]string{
		"B": "BLINKERS", "BLINKERS": "BLINKERS",
		"BF": "BLINKERS_FIRST_TIME", "BL": "BLINKERS_LASIX",
		"L": "LASIX", "L1": "LASIX_FIRST_TIME", "L2": "LASIX_SECOND_TIME",
		"LASIX": "LASIX", "SALIX": "LASIX",
		"T": "TONGUE_TIE", "TT": "TONGUE_TIE",
		"N": "NASAL_STRIP", "NS": "NASAL_STRIP",
		"S": "SHADOW_ROLL", "SR": "SHADOW_ROLL",
		"E": "EAR_PLUGS", "EP": "EAR_PLUGS",
		"H": "HOOD", "HOOD": "HOOD",
		"C": "CHEEK_PIECES", "CP": "CHEEK_PIECES",
	}
)

// Equipment splits a raw equipment string into canonical codes. Mapped
// codes are deduplicated in first-seen order; unrecognized tokens pass
// through as-is so nothing is silently dropped.
func Equipment(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{}
	for _, item := range equipmentSplit.Split(strings.ToUpper(trimmed), -1) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if code, ok := equipmentCodes[item]; ok {
			if !seen[code] {
				seen[code] = true
				out = append(out, code)
			}
		} else {
			out = append(out, item)
		}
	}
	return out
}

func EquipmentDescription(code string) string {
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = string(w[0]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

type EquipmentInfo struct {
	Code        string
	Description string
}

// ReferenceEquipment lists every canonical equipment code for seeding the
// equipment lookup table.
func ReferenceEquipment() []EquipmentInfo {
	seen := map[string]bool{}
	var out []EquipmentInfo
	for _, token := range equipmentTokenOrder {
		code := equipmentCodes[token]
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, EquipmentInfo{Code: code, Description: EquipmentDescription(code)})
	}
	return out
}

// Map iteration order is not stable, so seeding walks a fixed token list.
var equipmentTokenOrder = []string{
	"B", "BF", "BL", "L", "L1", "L2", "T", "N", "S", "E", "H", "C",
}
