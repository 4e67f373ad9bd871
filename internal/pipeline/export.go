package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"racebase/internal/storage"
)

// ExportXLSX writes the normalized races and entries to a two-sheet
// workbook. Empty trackCode or raceDate means no filter on that column.
func ExportXLSX(db *storage.DB, outputPath, trackCode, raceDate string) error {
	races, err := db.ExportRaces(trackCode, raceDate)
	if err != nil {
		return err
	}
	entries, err := db.ExportEntries(trackCode, raceDate)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	raceSheet := f.GetSheetName(0)
	if err := f.SetSheetName(raceSheet, "Races"); err != nil {
		return err
	}
	raceSheet = "Races"
	if _, err := f.NewSheet("Entries"); err != nil {
		return err
	}

	raceHeaders := []string{
		"race_id", "track_code", "track_name", "race_date", "race_number",
		"course_type", "race_type", "class_level", "purse_category",
		"track_condition", "distance_yards", "purse_usd", "winning_time",
		"entry_count",
	}
	for i, h := range raceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(raceSheet, cell, h)
	}
	for i, row := range races {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(raceSheet, cell, value)
		}
		set(1, row.RaceID)
		set(2, row.TrackCode)
		set(3, derefString(row.TrackName))
		set(4, row.RaceDate)
		set(5, row.RaceNumber)
		set(6, row.CourseType)
		set(7, row.RaceTypeCode)
		set(8, row.ClassLevel)
		set(9, row.PurseCategory)
		set(10, row.TrackCondition)
		set(11, derefInt(row.DistanceYards))
		set(12, derefFloat(row.PurseUSD))
		set(13, derefFloat(row.WinningTime))
		set(14, row.EntryCount)
	}

	entryHeaders := []string{
		"entry_id", "race_id", "registration_number", "horse_name",
		"program_number", "post_position", "weight_lbs", "morning_line_odds",
		"finish_position", "speed_rating", "actual_odds", "scratched",
	}
	for i, h := range entryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue("Entries", cell, h)
	}
	for i, row := range entries {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue("Entries", cell, value)
		}
		set(1, row.EntryID)
		set(2, row.RaceID)
		set(3, row.RegistrationNumber)
		set(4, derefString(row.HorseName))
		set(5, derefString(row.ProgramNumber))
		set(6, derefInt(row.PostPosition))
		set(7, derefInt(row.WeightLbs))
		set(8, derefFloat(row.MorningLineOdds))
		set(9, derefInt(row.FinishPosition))
		set(10, derefFloat(row.SpeedRating))
		set(11, derefFloat(row.ActualOdds))
		set(12, row.Scratched)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
