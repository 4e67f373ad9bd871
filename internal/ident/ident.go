package ident

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Card filenames look like SIMD20230101AQU_USA.xml: a 4-char record tag,
// an 8-digit date, then a variable-length venue token optionally followed
// by an underscore-delimited region qualifier.
const (
	prefixLen   = 12
	venueMaxLen = 4
)

var regions = map[string]bool{
	"USA": true, "CAN": true, "GB": true, "IRE": true,
	"FR": true, "UAE": true, "JPN": true, "AUS": true,
}

var knownExts = map[string]bool{
	".xml": true, ".zip": true, ".html": true, ".htm": true,
	".xlsx": true, ".xls": true, ".pdf": true,
}

// cleanBase strips the directory, any zip-member prefix and the known
// file extensions.
func cleanBase(filename string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndexByte(base, ':'); i >= 0 {
		base = base[i+1:]
	}
	for {
		ext := strings.ToLower(filepath.Ext(base))
		if !knownExts[ext] {
			return base
		}
		base = base[:len(base)-len(ext)]
	}
}

// VenueCode extracts the track code from a card filename: the segment
// right after the fixed prefix, cut at the first underscore so a region
// qualifier is never mistaken for the venue. Names shorter than the
// prefix yield "".
func VenueCode(filename string) string {
	base := cleanBase(filename)
	if len(base) < prefixLen {
		return ""
	}
	segment := base[prefixLen:]
	if i := strings.IndexByte(segment, '_'); i >= 0 {
		segment = segment[:i]
	}
	segment = strings.ToUpper(segment)
	if len(segment) > venueMaxLen {
		segment = segment[:venueMaxLen]
	}
	return segment
}

// Region returns the underscore qualifier from a card filename when it is
// a known region code, otherwise "".
func Region(filename string) string {
	base := cleanBase(filename)
	if len(base) < prefixLen {
		return ""
	}
	segment := base[prefixLen:]
	i := strings.IndexByte(segment, '_')
	if i < 0 {
		return ""
	}
	qualifier := strings.ToUpper(segment[i+1:])
	if regions[qualifier] {
		return qualifier
	}
	return ""
}

// CardDate reads the YYYYMMDD digits after the record tag and formats them
// as YYYY-MM-DD.
func CardDate(filename string) (string, bool) {
	base := cleanBase(filename)
	if len(base) < prefixLen {
		return "", false
	}
	digits := base[4:prefixLen]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	return digits[:4] + "-" + digits[4:6] + "-" + digits[6:8], true
}

// Chart filenames look like aqu20230101tch.xml: the venue is the leading
// alpha run, the date the digits after it.

func ChartVenueCode(filename string) string {
	base := cleanBase(filename)
	i := 0
	for i < len(base) && isAlpha(base[i]) {
		i++
	}
	code := strings.ToUpper(base[:i])
	if len(code) > 3 {
		code = code[:3]
	}
	return code
}

func ChartDate(filename string) (string, bool) {
	base := cleanBase(filename)
	i := 0
	for i < len(base) && isAlpha(base[i]) {
		i++
	}
	j := i
	for j < len(base) && isDigit(base[j]) {
		j++
	}
	if j-i < 8 {
		return "", false
	}
	d := base[i : i+8]
	return d[:4] + "-" + d[4:6] + "-" + d[6:8], true
}

func RaceID(trackCode, raceDate string, raceNumber int) string {
	return fmt.Sprintf("%s_%s_%d", trackCode, raceDate, raceNumber)
}

func EntryID(raceID, registrationNumber string) string {
	return raceID + "_" + registrationNumber
}

// RaceYear pulls the year out of a race identifier's date segment.
func RaceYear(raceID string) (int, bool) {
	parts := strings.Split(raceID, "_")
	if len(parts) < 2 || len(parts[1]) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(parts[1][:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
