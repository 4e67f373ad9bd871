package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"racebase/internal"
	"racebase/internal/ident"
	"racebase/internal/normalize"
)

var ErrNoTable = errors.New("no entries table found")

// sheetColumns holds the resolved column index per field, -1 when the
// sheet does not carry that column.
type sheetColumns struct {
	race       int
	horse      int
	program    int
	post       int
	weight     int
	equipment  int
	medication int
	distance   int
	surface    int
	raceType   int
	purse      int
	odds       int
	condition  int
	scratch    int
}

// DecodeEntriesHTML reads entry sheets published as HTML tables. Every
// table with a recognizable header contributes rows; a document with no
// usable table is ErrNoTable.
func DecodeEntriesHTML(filename string, data []byte) (internal.SheetBatch, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return internal.SheetBatch{}, fmt.Errorf("entries %s: %w", filepath.Base(filename), err)
	}

	grids := [][][]string{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		grid := [][]string{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				grid = append(grid, cells)
			}
		})
		if len(grid) >= 2 {
			grids = append(grids, grid)
		}
	})

	return assembleSheet(filename, grids)
}

// DecodeEntriesXLSX reads entry sheets published as workbooks, one grid
// per worksheet.
func DecodeEntriesXLSX(filename string, data []byte) (internal.SheetBatch, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return internal.SheetBatch{}, fmt.Errorf("entries %s: %w", filepath.Base(filename), err)
	}
	defer f.Close()

	grids := [][][]string{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		grids = append(grids, rows)
	}

	return assembleSheet(filename, grids)
}

func assembleSheet(filename string, grids [][][]string) (internal.SheetBatch, error) {
	track := ident.VenueCode(filename)
	if track == "" {
		track = ident.ChartVenueCode(filename)
	}
	if track == "" {
		track = "UNK"
	}
	date, ok := ident.CardDate(filename)
	if !ok {
		date, ok = ident.ChartDate(filename)
	}
	if !ok {
		return internal.SheetBatch{}, fmt.Errorf("entries %s: filename carries no date", filepath.Base(filename))
	}
	source := filepath.Base(filename)

	var batch internal.SheetBatch
	seenRaces := map[int]bool{}
	usable := false

	for _, grid := range grids {
		cols, start := findSheetHeader(grid)
		if start < 0 {
			continue
		}
		usable = true

		currentRace := 0
		for _, row := range grid[start:] {
			if cols.race >= 0 {
				if n, err := strconv.Atoi(strings.TrimSpace(pickCell(row, cols.race, -1))); err == nil {
					currentRace = n
				}
			}
			if currentRace == 0 {
				continue
			}
			horseName := pickCell(row, cols.horse, -1)
			if horseName == "" {
				continue
			}
			raceID := ident.RaceID(track, date, currentRace)

			if !seenRaces[currentRace] {
				seenRaces[currentRace] = true
				batch.Races = append(batch.Races, sheetRace(raceID, track, date, currentRace, cols, row, source))
			}

			horse := normalize.BuildHorseFeatures(normalize.RawHorseFields{
				Equipment:  pickCell(row, cols.equipment, -1),
				Medication: pickCell(row, cols.medication, -1),
				Weight:     pickCell(row, cols.weight, -1),
			})
			entry := internal.EntryRecord{
				RaceID:          raceID,
				ProgramNumber:   textPtr(pickCell(row, cols.program, -1)),
				PostPosition:    intPtr(pickCell(row, cols.post, -1)),
				WeightLbs:       horse.WeightLbs,
				HasBlinkers:     horse.HasBlinkers,
				HasLasix:        horse.HasLasix,
				HasTongueTie:    horse.HasTongueTie,
				HasNasalStrip:   horse.HasNasalStrip,
				HasShadowRoll:   horse.HasShadowRoll,
				HasCheekPieces:  horse.HasCheekPieces,
				HasEarPlugs:     horse.HasEarPlugs,
				HasHood:         horse.HasHood,
				MorningLineOdds: normalize.Odds(pickCell(row, cols.odds, -1)),
				Scratched:       pickCell(row, cols.scratch, -1) != "",
				SourceFile:      source,
				DataSource:      "entries",
			}
			batch.Entries = append(batch.Entries, internal.SheetEntry{
				RaceID:    raceID,
				HorseName: horseName,
				Entry:     entry,
			})
		}
	}

	if !usable {
		return internal.SheetBatch{}, ErrNoTable
	}
	return batch, nil
}

// sheetRace builds the race record from the first row seen for a race
// number; entry sheets repeat race-level fields on every row.
func sheetRace(raceID, track, date string, number int, cols sheetColumns, row []string, source string) internal.RaceRecord {
	features := normalize.BuildRaceFeatures(normalize.RawRaceFields{
		CourseType:     pickCell(row, cols.surface, -1),
		TrackCondition: pickCell(row, cols.condition, -1),
		RaceType:       pickCell(row, cols.raceType, -1),
		Purse:          pickCell(row, cols.purse, -1),
	})
	return internal.RaceRecord{
		RaceID:           raceID,
		TrackCode:        track,
		RaceDate:         date,
		RaceNumber:       number,
		CourseType:       features.CourseType,
		RaceTypeCode:     features.Type.Code,
		RaceTypeText:     textPtr(features.Type.Description),
		ClassLevel:       features.Type.Level,
		PurseCategory:    features.Type.PurseCategory,
		TrackCondition:   features.TrackCondition,
		FilliesAndMares:  features.Sex.FilliesAndMares,
		ColtsAndGeldings: features.Sex.ColtsAndGeldings,
		FilliesOnly:      features.Sex.FilliesOnly,
		MaresOnly:        features.Sex.MaresOnly,
		ColtsOnly:        features.Sex.ColtsOnly,
		GeldingsOnly:     features.Sex.GeldingsOnly,
		DistanceYards:    parseDistancePhrase(pickCell(row, cols.distance, -1)),
		PurseUSD:         features.PurseUSD,
		SourceFile:       source,
		DataSource:       "entries",
	}
}

// findSheetHeader scans the first rows of a grid for the header and
// returns the resolved columns with the index of the first data row, -1
// when no header is found. A grid is usable once a horse column is
// located; everything else is optional.
func findSheetHeader(grid [][]string) (sheetColumns, int) {
	for i := 0; i < len(grid) && i < 3; i++ {
		headers := make([]string, 0, len(grid[i]))
		for _, h := range grid[i] {
			headers = append(headers, strings.ToLower(strings.TrimSpace(h)))
		}
		cols := sheetColumns{
			race:       findHeaderIndex(headers, []string{"race"}),
			horse:      findHeaderIndex(headers, []string{"horse"}),
			program:    findHeaderIndex(headers, []string{"program", "prog", "pgm"}),
			post:       findHeaderIndex(headers, []string{"post", "pp"}),
			weight:     findHeaderIndex(headers, []string{"weight", "wt"}),
			equipment:  findHeaderIndex(headers, []string{"equip"}),
			medication: findHeaderIndex(headers, []string{"med"}),
			distance:   findHeaderIndex(headers, []string{"dist"}),
			surface:    findHeaderIndex(headers, []string{"surf", "course"}),
			raceType:   findHeaderIndex(headers, []string{"type", "class"}),
			purse:      findHeaderIndex(headers, []string{"purse"}),
			odds:       findHeaderIndex(headers, []string{"odds", "line"}),
			condition:  findHeaderIndex(headers, []string{"cond"}),
			scratch:    findHeaderIndex(headers, []string{"scr"}),
		}
		if cols.horse >= 0 {
			return cols, i + 1
		}
	}
	return sheetColumns{}, -1
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int, fallback int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	if fallback >= 0 && fallback < len(cells) {
		return strings.TrimSpace(cells[fallback])
	}
	return ""
}
