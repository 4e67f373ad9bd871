package pipeline

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"racebase/internal"
	"racebase/internal/ident"
	"racebase/internal/normalize"
)

// Result charts put the race date on the root element and the track code
// in a TRACK child; every RACE child updates a race the cards already
// loaded.

type chartTrackXML struct {
	Code string `xml:"CODE"`
}

type chartRaceXML struct {
	Number        string          `xml:"NUMBER,attr"`
	WinTime       string          `xml:"WIN_TIME"`
	Fraction1     string          `xml:"FRACTION_1"`
	Fraction2     string          `xml:"FRACTION_2"`
	Fraction3     string          `xml:"FRACTION_3"`
	Fraction4     string          `xml:"FRACTION_4"`
	Fraction5     string          `xml:"FRACTION_5"`
	Condition     string          `xml:"TRK_COND"`
	Weather       string          `xml:"WEATHER"`
	WindSpeed     string          `xml:"WIND_SPEED"`
	WindDirection string          `xml:"WIND_DIRECTION"`
	Wagers        []chartWagerXML `xml:"EXOTIC_WAGERS>WAGER"`
	Entries       []chartEntryXML `xml:"ENTRY"`
}

type chartWagerXML struct {
	WagerType string `xml:"WAGER_TYPE"`
	PoolTotal string `xml:"POOL_TOTAL"`
	Winners   string `xml:"WINNERS"`
	Payoff    string `xml:"PAYOFF"`
	Tickets   string `xml:"NUM_TICKETS"`
}

type chartEntryXML struct {
	Name        string         `xml:"NAME"`
	OfficialFin string         `xml:"OFFICIAL_FIN"`
	FinishTime  string         `xml:"FINISH_TIME"`
	SpeedRating string         `xml:"SPEED_RATING"`
	WinPayoff   string         `xml:"WIN_PAYOFF"`
	PlacePayoff string         `xml:"PLACE_PAYOFF"`
	ShowPayoff  string         `xml:"SHOW_PAYOFF"`
	DollarOdds  string         `xml:"DOLLAR_ODDS"`
	Comment     string         `xml:"COMMENT"`
	JockeyKey   string         `xml:"JOCKEY>KEY"`
	TrainerKey  string         `xml:"TRAINER>KEY"`
	Calls       []chartCallXML `xml:"POINT_OF_CALL"`
}

type chartCallXML struct {
	Which    string `xml:"WHICH,attr"`
	Position string `xml:"POSITION"`
	Lengths  string `xml:"LENGTHS"`
}

// fractionDistances approximates the yards covered at each timed call.
// Charts do not carry per-race call distances.
var fractionDistances = map[int]int{
	1: 440,
	2: 880,
	3: 1320,
	4: 1760,
	5: 2200,
}

// DecodeChart reads one result-chart XML file. Horse names stay
// unresolved in the returned entries; the caller matches them against the
// horse master before applying results.
func DecodeChart(filename string, data []byte) (internal.ChartBatch, error) {
	source := filepath.Base(filename)

	var batch internal.ChartBatch
	var races []chartRaceXML

	dec := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return internal.ChartBatch{}, fmt.Errorf("chart %s: %w", source, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			sawRoot = true
			for _, attr := range se.Attr {
				if attr.Name.Local == "RACE_DATE" {
					batch.RaceDate = strings.TrimSpace(attr.Value)
				}
			}
			continue
		}
		switch se.Name.Local {
		case "TRACK":
			var tr chartTrackXML
			if err := dec.DecodeElement(&tr, &se); err != nil {
				return internal.ChartBatch{}, fmt.Errorf("chart %s: %w", source, err)
			}
			if code := strings.TrimSpace(tr.Code); code != "" {
				batch.TrackCode = strings.ToUpper(code)
			}
		case "RACE":
			var rc chartRaceXML
			if err := dec.DecodeElement(&rc, &se); err != nil {
				return internal.ChartBatch{}, fmt.Errorf("chart %s: %w", source, err)
			}
			races = append(races, rc)
		}
	}

	if batch.TrackCode == "" {
		batch.TrackCode = ident.ChartVenueCode(filename)
	}
	if batch.RaceDate == "" {
		if d, ok := ident.ChartDate(filename); ok {
			batch.RaceDate = d
		}
	}
	if batch.TrackCode == "" || batch.RaceDate == "" {
		return internal.ChartBatch{}, fmt.Errorf("chart %s: track or date missing", source)
	}

	for _, rc := range races {
		number, err := strconv.Atoi(strings.TrimSpace(rc.Number))
		if err != nil {
			continue
		}
		raceID := ident.RaceID(batch.TrackCode, batch.RaceDate, number)

		batch.Results = append(batch.Results, internal.RaceResult{
			RaceID:            raceID,
			WinningTime:       normalize.Seconds(rc.WinTime),
			FinalFractionTime: normalize.Seconds(rc.Fraction5),
			TrackCondition:    normalize.TrackCondition(rc.Condition),
			Weather:           textPtr(rc.Weather),
			WindSpeed:         normalize.Numeric(rc.WindSpeed),
			WindDirection:     textPtr(rc.WindDirection),
		})

		fractions := [...]string{rc.Fraction1, rc.Fraction2, rc.Fraction3, rc.Fraction4, rc.Fraction5}
		for i, raw := range fractions {
			secs := normalize.Seconds(raw)
			if secs == nil {
				continue
			}
			call := i + 1
			dist := fractionDistances[call]
			batch.Fractions = append(batch.Fractions, internal.FractionRow{
				RaceID:        raceID,
				CallPosition:  call,
				DistanceYards: &dist,
				TimeSeconds:   *secs,
			})
		}

		for _, w := range rc.Wagers {
			wagerType := strings.TrimSpace(w.WagerType)
			if wagerType == "" {
				continue
			}
			batch.Wagers = append(batch.Wagers, internal.WagerRow{
				RaceID:       raceID,
				WagerType:    wagerType,
				PoolTotal:    normalize.Numeric(w.PoolTotal),
				Combinations: textPtr(w.Winners),
				Payout:       normalize.Numeric(w.Payoff),
				WinnerCount:  normalize.Numeric(w.Tickets),
			})
		}

		for _, e := range rc.Entries {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				continue
			}
			entry := internal.ChartEntry{
				RaceID:    raceID,
				HorseName: name,
				Result: internal.EntryResult{
					RaceID:         raceID,
					FinishPosition: numericInt(e.OfficialFin),
					FinalTime:      normalize.Seconds(e.FinishTime),
					SpeedRating:    normalize.Numeric(e.SpeedRating),
					WinPayoff:      normalize.Numeric(e.WinPayoff),
					PlacePayoff:    normalize.Numeric(e.PlacePayoff),
					ShowPayoff:     normalize.Numeric(e.ShowPayoff),
					ActualOdds:     normalize.Numeric(e.DollarOdds),
					Comment:        textPtr(e.Comment),
					JockeyID:       textPtr(e.JockeyKey),
					TrainerID:      textPtr(e.TrainerKey),
				},
			}
			for _, c := range e.Calls {
				which := strings.TrimSpace(c.Which)
				pos := numericInt(c.Position)
				if which == "" || pos == nil {
					continue
				}
				entry.Calls = append(entry.Calls, internal.ChartCall{
					Call:     callNumber(which),
					Position: *pos,
					Lengths:  normalize.Numeric(c.Lengths),
				})
			}
			batch.Entries = append(batch.Entries, entry)
		}
	}

	return batch, nil
}

// callNumber maps a chart's WHICH attribute to the canonical call
// ordinal. FINAL is the sixth call; unknown labels collapse to zero.
func callNumber(which string) int {
	if which == "FINAL" {
		return 6
	}
	if v, err := strconv.Atoi(which); err == nil {
		return v
	}
	return 0
}
