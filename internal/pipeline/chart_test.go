package pipeline

import (
	"strings"
	"testing"
)

const chartFixture = `<?xml version="1.0" encoding="UTF-8"?>
<CHART RACE_DATE="2023-01-01">
  <TRACK><CODE>AQU</CODE></TRACK>
  <RACE NUMBER="7">
    <WIN_TIME>1:10.25</WIN_TIME>
    <FRACTION_1>22.10</FRACTION_1>
    <FRACTION_2>45.30</FRACTION_2>
    <FRACTION_3>1:10.25</FRACTION_3>
    <TRK_COND>FT</TRK_COND>
    <WEATHER>Clear</WEATHER>
    <WIND_SPEED>12</WIND_SPEED>
    <WIND_DIRECTION>NW</WIND_DIRECTION>
    <EXOTIC_WAGERS>
      <WAGER>
        <WAGER_TYPE>EXACTA</WAGER_TYPE>
        <POOL_TOTAL>$125,000</POOL_TOTAL>
        <WINNERS>3-7</WINNERS>
        <PAYOFF>45.60</PAYOFF>
        <NUM_TICKETS>1200</NUM_TICKETS>
      </WAGER>
    </EXOTIC_WAGERS>
    <ENTRY>
      <NAME>Fleet Feather</NAME>
      <OFFICIAL_FIN>1</OFFICIAL_FIN>
      <FINISH_TIME>1:10.25</FINISH_TIME>
      <SPEED_RATING>95</SPEED_RATING>
      <WIN_PAYOFF>7.20</WIN_PAYOFF>
      <PLACE_PAYOFF>3.40</PLACE_PAYOFF>
      <SHOW_PAYOFF>2.60</SHOW_PAYOFF>
      <DOLLAR_ODDS>2.60</DOLLAR_ODDS>
      <COMMENT>drew clear</COMMENT>
      <JOCKEY><KEY>J500</KEY></JOCKEY>
      <TRAINER><KEY>T100</KEY></TRAINER>
      <POINT_OF_CALL WHICH="1"><POSITION>3</POSITION><LENGTHS>2.5</LENGTHS></POINT_OF_CALL>
      <POINT_OF_CALL WHICH="FINAL"><POSITION>1</POSITION><LENGTHS>0</LENGTHS></POINT_OF_CALL>
    </ENTRY>
    <ENTRY>
      <NAME>Night Ledger</NAME>
      <OFFICIAL_FIN>2</OFFICIAL_FIN>
      <DOLLAR_ODDS>8.90</DOLLAR_ODDS>
    </ENTRY>
  </RACE>
</CHART>`

func TestDecodeChart(t *testing.T) {
	batch, err := DecodeChart("aqu20230101tch.xml", []byte(chartFixture))
	if err != nil {
		t.Fatal(err)
	}

	if batch.TrackCode != "AQU" || batch.RaceDate != "2023-01-01" {
		t.Fatalf("identity: %s %s", batch.TrackCode, batch.RaceDate)
	}
	if len(batch.Races) != 0 {
		t.Fatalf("xml charts must not emit races, got %d", len(batch.Races))
	}

	if len(batch.Results) != 1 {
		t.Fatalf("results=%d", len(batch.Results))
	}
	res := batch.Results[0]
	if res.RaceID != "AQU_2023-01-01_7" {
		t.Fatalf("race_id=%s", res.RaceID)
	}
	if res.WinningTime == nil || *res.WinningTime != 70.25 {
		t.Fatalf("winning time=%v", res.WinningTime)
	}
	if res.FinalFractionTime != nil {
		t.Fatalf("final fraction=%v without FRACTION_5", res.FinalFractionTime)
	}
	if res.TrackCondition != "FAST" {
		t.Fatalf("condition=%s", res.TrackCondition)
	}
	if res.Weather == nil || *res.Weather != "Clear" {
		t.Fatalf("weather=%v", res.Weather)
	}
	if res.WindSpeed == nil || *res.WindSpeed != 12 {
		t.Fatalf("wind=%v", res.WindSpeed)
	}

	if len(batch.Fractions) != 3 {
		t.Fatalf("fractions=%d", len(batch.Fractions))
	}
	for i, want := range []struct {
		call int
		dist int
		time float64
	}{{1, 440, 22.10}, {2, 880, 45.30}, {3, 1320, 70.25}} {
		got := batch.Fractions[i]
		if got.CallPosition != want.call || got.DistanceYards == nil || *got.DistanceYards != want.dist || got.TimeSeconds != want.time {
			t.Fatalf("fraction %d: %+v", i, got)
		}
	}

	if len(batch.Wagers) != 1 {
		t.Fatalf("wagers=%d", len(batch.Wagers))
	}
	w := batch.Wagers[0]
	if w.WagerType != "EXACTA" {
		t.Fatalf("wager type=%s", w.WagerType)
	}
	if w.PoolTotal == nil || *w.PoolTotal != 125000 {
		t.Fatalf("pool=%v", w.PoolTotal)
	}
	if w.Combinations == nil || *w.Combinations != "3-7" {
		t.Fatalf("combinations=%v", w.Combinations)
	}
	if w.WinnerCount == nil || *w.WinnerCount != 1200 {
		t.Fatalf("tickets=%v", w.WinnerCount)
	}

	if len(batch.Entries) != 2 {
		t.Fatalf("entries=%d", len(batch.Entries))
	}
	e := batch.Entries[0]
	if e.HorseName != "Fleet Feather" || e.RaceID != "AQU_2023-01-01_7" {
		t.Fatalf("entry identity: %+v", e)
	}
	if e.Result.FinishPosition == nil || *e.Result.FinishPosition != 1 {
		t.Fatalf("finish=%v", e.Result.FinishPosition)
	}
	if e.Result.FinalTime == nil || *e.Result.FinalTime != 70.25 {
		t.Fatalf("final time=%v", e.Result.FinalTime)
	}
	if e.Result.SpeedRating == nil || *e.Result.SpeedRating != 95 {
		t.Fatalf("speed=%v", e.Result.SpeedRating)
	}
	if e.Result.ActualOdds == nil || *e.Result.ActualOdds != 2.60 {
		t.Fatalf("odds=%v", e.Result.ActualOdds)
	}
	if e.Result.JockeyID == nil || *e.Result.JockeyID != "J500" {
		t.Fatalf("jockey=%v", e.Result.JockeyID)
	}
	if e.Result.TrainerID == nil || *e.Result.TrainerID != "T100" {
		t.Fatalf("trainer=%v", e.Result.TrainerID)
	}
	if len(e.Calls) != 2 {
		t.Fatalf("calls=%d", len(e.Calls))
	}
	if e.Calls[0].Call != 1 || e.Calls[0].Position != 3 || e.Calls[0].Lengths == nil || *e.Calls[0].Lengths != 2.5 {
		t.Fatalf("call[0]: %+v", e.Calls[0])
	}
	if e.Calls[1].Call != 6 || e.Calls[1].Position != 1 {
		t.Fatalf("final call: %+v", e.Calls[1])
	}
	if e.Calls[1].Lengths == nil || *e.Calls[1].Lengths != 0 {
		t.Fatalf("final lengths=%v", e.Calls[1].Lengths)
	}
}

func TestDecodeChartFallsBackToFilename(t *testing.T) {
	fixture := strings.Replace(chartFixture, "<TRACK><CODE>AQU</CODE></TRACK>", "", 1)
	fixture = strings.Replace(fixture, ` RACE_DATE="2023-01-01"`, "", 1)

	batch, err := DecodeChart("aqu20230101tch.xml", []byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	if batch.TrackCode != "AQU" || batch.RaceDate != "2023-01-01" {
		t.Fatalf("fallback identity: %s %s", batch.TrackCode, batch.RaceDate)
	}
}

func TestCallNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1", 1},
		{"5", 5},
		{"FINAL", 6},
		{"7", 7},
		{"STRETCH", 0},
	}
	for _, tc := range cases {
		if got := callNumber(tc.in); got != tc.want {
			t.Errorf("callNumber(%q)=%d want %d", tc.in, got, tc.want)
		}
	}
}
