package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"racebase/internal"
	"racebase/internal/config"
	"racebase/internal/pipeline"
	"racebase/internal/storage"
	"racebase/internal/tracks"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger := newLogger(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "source file path")
		kind := fs.String("kind", "", "card|chart|entries|pdf (default: detect)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		sourceKind, err := kindFromFlag(*kind, *input)
		must(err)
		svc := pipeline.NewService(db, cfg, logger)
		res, err := svc.IngestFile(*input, sourceKind)
		must(err)
		fmt.Printf("ingested %s kind=%s\n", res.SourceFile, res.Kind)
		for key, n := range res.Counts {
			fmt.Printf("  %s=%d\n", key, n)
		}
	case "tracks:sync":
		svc := tracks.NewSyncService(db, cfg)
		count, err := svc.Sync(context.Background())
		must(err)
		fmt.Printf("tracks sync complete: %d tracks\n", count)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		track := fs.String("track", "", "venue code filter")
		date := fs.String("date", "", "race date filter YYYY-MM-DD")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		must(pipeline.ExportXLSX(db, *out, *track, *date))
		fmt.Printf("exported to %s\n", *out)
	case "stats":
		counts, err := db.Counts()
		must(err)
		for _, table := range []string{
			"tracks", "horses", "trainers", "owners", "races", "entries",
			"race_equipment", "race_fractions", "race_wagering", "position_calls",
		} {
			fmt.Printf("%-16s %d\n", table, counts[table])
		}
		stats, err := db.RaceDistanceStats()
		must(err)
		if stats.Min != nil && stats.Max != nil && stats.Avg != nil {
			fmt.Printf("distance yards   min=%d max=%d avg=%.0f missing=%d\n",
				*stats.Min, *stats.Max, *stats.Avg, stats.Missing)
		}
		codes, err := db.TrackCodes()
		must(err)
		if len(codes) > 0 {
			fmt.Printf("venues           %s\n", strings.Join(codes, ", "))
		}
	default:
		usage()
		os.Exit(1)
	}
}

func kindFromFlag(kind, input string) (internal.SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return "", nil
	case "card":
		return internal.KindCardXML, nil
	case "chart":
		return internal.KindChartXML, nil
	case "pdf":
		return internal.KindChartPDF, nil
	case "entries":
		switch strings.ToLower(filepath.Ext(input)) {
		case ".xlsx", ".xls":
			return internal.KindEntriesXLSX, nil
		}
		return internal.KindEntriesHTML, nil
	default:
		return "", fmt.Errorf("unsupported kind: %s", kind)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func usage() {
	fmt.Println("usage: racebase <command>")
	fmt.Println("commands:")
	fmt.Println("  ingest --input=./data/SIMD20230101AQU_USA.xml [--kind=card|chart|entries|pdf]")
	fmt.Println("  tracks:sync")
	fmt.Println("  export:xlsx --out=./out/racing.xlsx [--track=AQU] [--date=2023-01-01]")
	fmt.Println("  stats")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
