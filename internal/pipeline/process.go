package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"racebase/internal"
	"racebase/internal/config"
	"racebase/internal/ident"
	"racebase/internal/storage"
	"racebase/internal/tracks"
)

// Service runs one source file through decode, normalize, match and
// store. Decoding is pure; everything stateful funnels through the
// store so re-ingesting a file is idempotent.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	logger *slog.Logger
}

func NewService(db *storage.DB, cfg config.Config, logger *slog.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logger}
}

type IngestResult struct {
	SourceFile string
	Kind       internal.SourceKind
	Counts     map[string]int
}

// IngestFile processes a single source file. An empty kind means detect
// from the filename and content.
func (s *Service) IngestFile(path string, kind internal.SourceKind) (IngestResult, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, err
	}
	if kind == "" {
		kind, err = DetectKind(path, data)
		if err != nil {
			return IngestResult{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	var counts map[string]int
	switch kind {
	case internal.KindCardXML:
		counts, err = s.ingestCard(path, data)
	case internal.KindChartXML:
		var batch internal.ChartBatch
		batch, err = DecodeChart(path, data)
		if err == nil {
			counts, err = s.applyChart(batch)
		}
	case internal.KindChartPDF:
		var batch internal.ChartBatch
		batch, err = DecodeChartPDF(path, data)
		if err == nil {
			counts, err = s.applyChart(batch)
		}
	case internal.KindEntriesHTML, internal.KindEntriesXLSX:
		counts, err = s.ingestSheet(path, data, kind)
	default:
		err = fmt.Errorf("%s: %w", filepath.Base(path), ErrUnknownKind)
	}
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{SourceFile: filepath.Base(path), Kind: kind, Counts: counts}
	durationMs := float64(time.Since(start).Milliseconds())
	if err := s.db.InsertRun(kind, result.SourceFile, counts, durationMs); err != nil {
		return IngestResult{}, err
	}

	attrs := []any{
		slog.String("file", result.SourceFile),
		slog.String("kind", string(kind)),
		slog.Float64("duration_ms", durationMs),
	}
	for key, n := range counts {
		attrs = append(attrs, slog.Int(key, n))
	}
	s.logger.Info("ingested", attrs...)

	return result, nil
}

func (s *Service) ingestCard(path string, data []byte) (map[string]int, error) {
	batch, err := DecodeCard(path, data)
	if err != nil {
		return nil, err
	}
	s.enrichTrackNames(batch.Races)

	if err := s.db.UpsertHorses(batch.Horses); err != nil {
		return nil, err
	}
	if err := s.db.UpsertTrainers(batch.Trainers); err != nil {
		return nil, err
	}
	if err := s.db.UpsertOwners(batch.Owners); err != nil {
		return nil, err
	}
	if err := s.db.UpsertRaces(batch.Races); err != nil {
		return nil, err
	}
	if err := s.db.UpsertEntries(batch.Entries); err != nil {
		return nil, err
	}
	if err := s.db.UpsertEquipment(batch.Equipment); err != nil {
		return nil, err
	}

	return map[string]int{
		"races":     len(batch.Races),
		"entries":   len(batch.Entries),
		"horses":    len(batch.Horses),
		"trainers":  len(batch.Trainers),
		"owners":    len(batch.Owners),
		"equipment": len(batch.Equipment),
	}, nil
}

// applyChart updates races and entries the cards already loaded. A chart
// arriving before its card is not an error: the misses are counted,
// logged and skipped so the rest of the chart still lands.
func (s *Service) applyChart(batch internal.ChartBatch) (map[string]int, error) {
	if len(batch.Races) > 0 {
		s.enrichTrackNames(batch.Races)
		if err := s.db.UpsertRaces(batch.Races); err != nil {
			return nil, err
		}
	}

	raceMisses := 0
	for _, res := range batch.Results {
		n, err := s.db.ApplyRaceResult(res)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			raceMisses++
			s.logger.Warn("race result for unknown race", slog.String("race_id", res.RaceID))
		}
	}

	refs, err := s.db.HorseRefs()
	if err != nil {
		return nil, err
	}
	matcher := NewMatcher(s.cfg, refs)

	entriesApplied := 0
	unmatched := 0
	entryMisses := 0
	var calls []internal.PositionCallRow
	for _, entry := range batch.Entries {
		reg, reason := matcher.Match(entry.HorseName)
		if reason == internal.MatchNone {
			unmatched++
			s.logger.Warn("no registration for horse",
				slog.String("horse", entry.HorseName),
				slog.String("race_id", entry.RaceID),
			)
			continue
		}

		res := entry.Result
		res.RegistrationNumber = reg
		res.EntryID = ident.EntryID(entry.RaceID, reg)
		n, err := s.db.ApplyEntryResult(res)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			entryMisses++
			s.logger.Warn("entry result for unknown entry", slog.String("entry_id", res.EntryID))
			continue
		}
		entriesApplied++

		for _, c := range entry.Calls {
			calls = append(calls, internal.PositionCallRow{
				RaceID:             entry.RaceID,
				RegistrationNumber: reg,
				Call:               c.Call,
				Position:           c.Position,
				LengthsBehind:      c.Lengths,
			})
		}
	}

	if err := s.db.InsertFractions(batch.Fractions); err != nil {
		return nil, err
	}
	if err := s.db.InsertWagers(batch.Wagers); err != nil {
		return nil, err
	}
	if err := s.db.InsertPositionCalls(calls); err != nil {
		return nil, err
	}

	return map[string]int{
		"races":          len(batch.Races),
		"results":        len(batch.Results) - raceMisses,
		"entry_results":  entriesApplied,
		"fractions":      len(batch.Fractions),
		"wagers":         len(batch.Wagers),
		"position_calls": len(calls),
		"unmatched":      unmatched,
		"misses":         raceMisses + entryMisses,
	}, nil
}

// ingestSheet loads pre-race entry sheets. Sheet rows name horses but
// carry no registration numbers, so rows whose horse the store has never
// seen are skipped; a later card fills them in.
func (s *Service) ingestSheet(path string, data []byte, kind internal.SourceKind) (map[string]int, error) {
	var batch internal.SheetBatch
	var err error
	if kind == internal.KindEntriesHTML {
		batch, err = DecodeEntriesHTML(path, data)
	} else {
		batch, err = DecodeEntriesXLSX(path, data)
	}
	if err != nil {
		return nil, err
	}

	s.enrichTrackNames(batch.Races)
	if err := s.db.UpsertRaces(batch.Races); err != nil {
		return nil, err
	}

	refs, err := s.db.HorseRefs()
	if err != nil {
		return nil, err
	}
	matcher := NewMatcher(s.cfg, refs)

	entries := make([]internal.EntryRecord, 0, len(batch.Entries))
	unmatched := 0
	for _, se := range batch.Entries {
		reg, reason := matcher.Match(se.HorseName)
		if reason == internal.MatchNone {
			unmatched++
			s.logger.Warn("no registration for horse",
				slog.String("horse", se.HorseName),
				slog.String("race_id", se.RaceID),
			)
			continue
		}
		entry := se.Entry
		entry.RegistrationNumber = reg
		entry.EntryID = ident.EntryID(se.RaceID, reg)
		entries = append(entries, entry)
	}
	if err := s.db.UpsertEntries(entries); err != nil {
		return nil, err
	}

	return map[string]int{
		"races":     len(batch.Races),
		"entries":   len(entries),
		"unmatched": unmatched,
	}, nil
}

// enrichTrackNames fills in names for venue codes the synced master data
// knows. Races keep working unenriched when no sync has run yet.
func (s *Service) enrichTrackNames(races []internal.RaceRecord) {
	if len(races) == 0 {
		return
	}
	records, err := s.db.AllTracks()
	if err != nil {
		s.logger.Warn("track lookup failed", slog.String("error", err.Error()))
		return
	}
	idx := tracks.BuildIndex(records)
	for i := range races {
		if name := idx.Name(races[i].TrackCode); name != nil {
			races[i].TrackName = name
		}
	}
}
