package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"racebase/internal"
	"racebase/internal/ident"
	"racebase/internal/normalize"
)

var (
	raceHeaderRe = regexp.MustCompile(`(?i)^RACE\s+(\d+)`)
	finalTimeRe  = regexp.MustCompile(`(?i)FINAL\s+TIME[:\s]+([0-9:.]+)`)
	purseRe      = regexp.MustCompile(`(?i)PURSE[:\s]+(\$?[\d,]+)`)
	mixedDistRe  = regexp.MustCompile(`(?i)\b(\d+)\s+(\d+)/(\d+)\s*(FURLONGS?|MILES?|YARDS?)\b`)
	simpleDistRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(FURLONGS?|MILES?|YARDS?)\b`)
	conditionRe  = regexp.MustCompile(`\b(FAST|SLOPPY|MUDDY|FIRM|YIELDING|SOFT|HEAVY|GOOD)\b`)
)

// DecodeChartPDF reads a result chart published as PDF. The text layer
// gives far less than the XML feed, so this path is best effort: race
// headers open a block, and whatever the block's lines yield (type,
// distance, purse, condition, final time) is kept. Unlike XML charts the
// PDF may be the only record of a race, so races are emitted too.
func DecodeChartPDF(filename string, data []byte) (internal.ChartBatch, error) {
	source := filepath.Base(filename)

	track := ident.ChartVenueCode(filename)
	if track == "" {
		track = "UNK"
	}
	date, ok := ident.ChartDate(filename)
	if !ok {
		date, ok = ident.CardDate(filename)
	}
	if !ok {
		return internal.ChartBatch{}, fmt.Errorf("chart pdf %s: filename carries no date", source)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return internal.ChartBatch{}, fmt.Errorf("chart pdf %s: %w", source, err)
	}

	lines := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}

	return assembleChartText(source, track, date, lines)
}

type pdfRaceBlock struct {
	number    int
	typeText  string
	distance  *int
	purseText string
	condition string
	finalTime *float64
}

// assembleChartText walks the extracted text lines. A "RACE n" header
// opens a block; the classification comes from the header remainder or
// the line right under it, everything else from the first line in the
// block that matches.
func assembleChartText(source, track, date string, lines []string) (internal.ChartBatch, error) {
	batch := internal.ChartBatch{TrackCode: track, RaceDate: date}

	var block *pdfRaceBlock
	headerGap := 0
	flush := func() {
		if block == nil || block.number == 0 {
			return
		}
		appendPDFRace(&batch, *block, source)
		block = nil
	}

	for _, line := range lines {
		if m := raceHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			block = &pdfRaceBlock{
				number:   number,
				typeText: strings.TrimSpace(strings.TrimLeft(line[len(m[0]):], " -:")),
			}
			headerGap = 0
			continue
		}
		if block == nil {
			continue
		}
		headerGap++

		if block.typeText == "" && headerGap == 1 {
			if c := normalize.RaceType(line); c.Level > 0 {
				block.typeText = line
			}
		}
		if block.distance == nil {
			block.distance = parseDistancePhrase(line)
		}
		if block.purseText == "" {
			if m := purseRe.FindStringSubmatch(line); m != nil {
				block.purseText = m[1]
			}
		}
		if block.condition == "" {
			if m := conditionRe.FindStringSubmatch(strings.ToUpper(line)); m != nil {
				block.condition = m[1]
			}
		}
		if block.finalTime == nil {
			if m := finalTimeRe.FindStringSubmatch(line); m != nil {
				block.finalTime = normalize.Seconds(m[1])
			}
		}
	}
	flush()

	return batch, nil
}

func appendPDFRace(batch *internal.ChartBatch, b pdfRaceBlock, source string) {
	raceID := ident.RaceID(batch.TrackCode, batch.RaceDate, b.number)
	features := normalize.BuildRaceFeatures(normalize.RawRaceFields{
		TrackCondition: b.condition,
		RaceType:       b.typeText,
		Purse:          b.purseText,
	})

	batch.Races = append(batch.Races, internal.RaceRecord{
		RaceID:         raceID,
		TrackCode:      batch.TrackCode,
		RaceDate:       batch.RaceDate,
		RaceNumber:     b.number,
		CourseType:     features.CourseType,
		RaceTypeCode:   features.Type.Code,
		RaceTypeText:   textPtr(features.Type.Description),
		ClassLevel:     features.Type.Level,
		PurseCategory:  features.Type.PurseCategory,
		TrackCondition: features.TrackCondition,
		DistanceYards:  b.distance,
		PurseUSD:       features.PurseUSD,
		SourceFile:     source,
		DataSource:     "result_chart",
	})

	if b.finalTime != nil || b.condition != "" {
		batch.Results = append(batch.Results, internal.RaceResult{
			RaceID:         raceID,
			WinningTime:    b.finalTime,
			TrackCondition: features.TrackCondition,
		})
	}
}

// parseDistancePhrase reads textual distances like "6 Furlongs",
// "1 1/16 Miles" or "440 Yards" into canonical yards.
func parseDistancePhrase(s string) *int {
	if m := mixedDistRe.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den != 0 {
			yards := normalize.Distance(whole+num/den, m[4])
			return &yards
		}
	}
	if m := simpleDistRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		yards := normalize.Distance(v, m[2])
		return &yards
	}
	return nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
