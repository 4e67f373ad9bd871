package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"racebase/internal"
	"racebase/internal/config"
	"racebase/internal/storage"
)

func TestSmokeIngestToXLSX(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "racing.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg, _ := config.Load()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(db, cfg, logger)

	if err := db.UpsertTracks([]internal.TrackRecord{{Code: "AQU", Name: "Aqueduct"}}); err != nil {
		t.Fatal(err)
	}

	cardPath := filepath.Join(tmp, "SIMD20230101AQU_USA.xml")
	if err := os.WriteFile(cardPath, []byte(cardFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := svc.IngestFile(cardPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != internal.KindCardXML {
		t.Fatalf("kind=%q", res.Kind)
	}
	if res.Counts["races"] != 1 || res.Counts["entries"] != 2 || res.Counts["horses"] != 2 {
		t.Fatalf("card counts: %+v", res.Counts)
	}

	sheetPath := filepath.Join(tmp, "ENTR20230101AQU_USA.html")
	if err := os.WriteFile(sheetPath, []byte(entriesHTMLFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = svc.IngestFile(sheetPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != internal.KindEntriesHTML {
		t.Fatalf("kind=%q", res.Kind)
	}
	if res.Counts["races"] != 2 || res.Counts["entries"] != 2 || res.Counts["unmatched"] != 1 {
		t.Fatalf("sheet counts: %+v", res.Counts)
	}

	chartPath := filepath.Join(tmp, "aqu20230101tch.xml")
	if err := os.WriteFile(chartPath, []byte(chartFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = svc.IngestFile(chartPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != internal.KindChartXML {
		t.Fatalf("kind=%q", res.Kind)
	}
	if res.Counts["results"] != 1 || res.Counts["entry_results"] != 2 || res.Counts["misses"] != 0 || res.Counts["unmatched"] != 0 {
		t.Fatalf("chart counts: %+v", res.Counts)
	}
	if res.Counts["fractions"] != 3 || res.Counts["wagers"] != 1 || res.Counts["position_calls"] != 2 {
		t.Fatalf("chart detail counts: %+v", res.Counts)
	}

	races, err := db.ExportRaces("AQU", "2023-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(races) != 3 {
		t.Fatalf("export races=%d", len(races))
	}
	var seventh *internal.RaceExportRow
	for i := range races {
		if races[i].RaceID == "AQU_2023-01-01_7" {
			seventh = &races[i]
		}
	}
	if seventh == nil {
		t.Fatal("race 7 missing from export")
	}
	if seventh.RaceTypeCode != "MCL" || seventh.EntryCount != 2 {
		t.Fatalf("race 7: %+v", seventh)
	}
	if seventh.TrackName == nil || *seventh.TrackName != "Aqueduct" {
		t.Fatalf("track name not enriched: %v", seventh.TrackName)
	}
	if seventh.WinningTime == nil || *seventh.WinningTime != 70.25 {
		t.Fatalf("winning time not applied: %v", seventh.WinningTime)
	}

	entries, err := db.ExportEntries("AQU", "2023-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("export entries=%d", len(entries))
	}
	var winner *internal.EntryExportRow
	for i := range entries {
		if entries[i].EntryID == "AQU_2023-01-01_7_H0123456" {
			winner = &entries[i]
		}
	}
	if winner == nil {
		t.Fatal("winner missing from export")
	}
	if winner.HorseName == nil || *winner.HorseName != "Fleet Feather" {
		t.Fatalf("horse name: %v", winner.HorseName)
	}
	if winner.FinishPosition == nil || *winner.FinishPosition != 1 {
		t.Fatalf("finish position not applied: %v", winner.FinishPosition)
	}
	if winner.SpeedRating == nil || *winner.SpeedRating != 95 {
		t.Fatalf("speed rating not applied: %v", winner.SpeedRating)
	}

	out := filepath.Join(tmp, "export", "result.xlsx")
	if err := ExportXLSX(db, out, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}

	counts, err := db.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["races"] != 3 || counts["entries"] != 4 || counts["position_calls"] != 2 {
		t.Fatalf("table counts: %+v", counts)
	}
}

func TestIngestFileUnknownKind(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "racing.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg, _ := config.Load()
	svc := NewService(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	path := filepath.Join(tmp, "mystery.bin")
	if err := os.WriteFile(path, []byte{0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.IngestFile(path, ""); err == nil {
		t.Fatal("expected detection error")
	}
}
