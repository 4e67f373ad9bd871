package pipeline

import "testing"

func TestAssembleChartText(t *testing.T) {
	lines := []string{
		"AQUEDUCT RACE COURSE",
		"January 1, 2023",
		"RACE 1 - MAIDEN CLAIMING",
		"Purse: $40,000",
		"6 Furlongs on the main track. Track Fast.",
		"FINAL TIME: 1:12.25",
		"RACE 2",
		"ALLOWANCE",
		"1 1/16 Miles on the turf. Track Muddy.",
		"Purse: $62,000",
		"FINAL TIME: 1:45.50",
	}

	batch, err := assembleChartText("aqu20230101tch.pdf", "AQU", "2023-01-01", lines)
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Races) != 2 {
		t.Fatalf("races=%d", len(batch.Races))
	}

	first := batch.Races[0]
	if first.RaceID != "AQU_2023-01-01_1" {
		t.Fatalf("race_id=%s", first.RaceID)
	}
	if first.RaceTypeCode != "MCL" || first.ClassLevel != 1 {
		t.Fatalf("classification: %s/%d", first.RaceTypeCode, first.ClassLevel)
	}
	if first.DistanceYards == nil || *first.DistanceYards != 1320 {
		t.Fatalf("distance=%v", first.DistanceYards)
	}
	if first.PurseUSD == nil || *first.PurseUSD != 40000 {
		t.Fatalf("purse=%v", first.PurseUSD)
	}
	if first.TrackCondition != "FAST" {
		t.Fatalf("condition=%s", first.TrackCondition)
	}
	if first.DataSource != "result_chart" {
		t.Fatalf("source=%s", first.DataSource)
	}

	second := batch.Races[1]
	if second.RaceTypeCode != "ALLOWANCE" || second.ClassLevel != 5 {
		t.Fatalf("second classification: %s/%d", second.RaceTypeCode, second.ClassLevel)
	}
	if second.DistanceYards == nil || *second.DistanceYards != 1870 {
		t.Fatalf("second distance=%v", second.DistanceYards)
	}
	if second.TrackCondition != "MUDDY" {
		t.Fatalf("second condition=%s", second.TrackCondition)
	}

	if len(batch.Results) != 2 {
		t.Fatalf("results=%d", len(batch.Results))
	}
	if batch.Results[0].WinningTime == nil || *batch.Results[0].WinningTime != 72.25 {
		t.Fatalf("first time=%v", batch.Results[0].WinningTime)
	}
	if batch.Results[1].WinningTime == nil || *batch.Results[1].WinningTime != 105.50 {
		t.Fatalf("second time=%v", batch.Results[1].WinningTime)
	}
}

func TestAssembleChartTextSkipsProse(t *testing.T) {
	lines := []string{
		"Weather clear, no races carded today.",
		"Track FAST all afternoon.",
	}
	batch, err := assembleChartText("aqu20230101tch.pdf", "AQU", "2023-01-01", lines)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Races) != 0 || len(batch.Results) != 0 {
		t.Fatalf("prose produced records: %+v", batch)
	}
}

func TestParseDistancePhrase(t *testing.T) {
	cases := []struct {
		in   string
		want int
		none bool
	}{
		{"6 Furlongs", 1320, false},
		{"1 1/16 Miles", 1870, false},
		{"About 1 Mile", 1760, false},
		{"440 Yards", 440, false},
		{"7.5 Furlongs", 1650, false},
		{"no distance here", 0, true},
	}
	for _, tc := range cases {
		got := parseDistancePhrase(tc.in)
		if tc.none {
			if got != nil {
				t.Errorf("parseDistancePhrase(%q)=%v want nil", tc.in, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Errorf("parseDistancePhrase(%q)=%v want %d", tc.in, got, tc.want)
		}
	}
}
