package pipeline

import (
	"errors"
	"testing"

	"racebase/internal"
)

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		data     string
		want     internal.SourceKind
	}{
		{name: "card xml by extension", filename: "SIMD20230101AQU_USA.xml", data: `<?xml version="1.0"?><EntryRaceCard><Race><RaceNumber>1</RaceNumber></Race></EntryRaceCard>`, want: internal.KindCardXML},
		{name: "chart xml by race date", filename: "aqu20230101tch.xml", data: `<CHART RACE_DATE="2023-01-01"><RACE NUMBER="1"/></CHART>`, want: internal.KindChartXML},
		{name: "chart xml by upper race", filename: "chart.xml", data: `<CHART><RACE NUMBER="1"/></CHART>`, want: internal.KindChartXML},
		{name: "html extension", filename: "ENTR20230101AQU_USA.html", data: "<html><table></table></html>", want: internal.KindEntriesHTML},
		{name: "xlsx extension", filename: "entries.xlsx", data: "PK\x03\x04junk", want: internal.KindEntriesXLSX},
		{name: "pdf extension", filename: "aqu0101.pdf", data: "%PDF-1.4", want: internal.KindChartPDF},
		{name: "pdf magic without extension", filename: "download", data: "%PDF-1.7 rest", want: internal.KindChartPDF},
		{name: "zip magic without extension", filename: "download", data: "PK\x03\x04rest", want: internal.KindEntriesXLSX},
		{name: "html content without extension", filename: "download", data: "<!doctype html><HTML><body><table></table></body></HTML>", want: internal.KindEntriesHTML},
		{name: "card content without extension", filename: "download", data: `<?xml version="1.0"?><EntryRaceCard><Starters/></EntryRaceCard>`, want: internal.KindCardXML},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectKind(tc.filename, []byte(tc.data))
			if err != nil {
				t.Fatalf("DetectKind: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestDetectKindUnknown(t *testing.T) {
	for _, tc := range []struct {
		name     string
		filename string
		data     string
	}{
		{name: "garbage bytes", filename: "blob.bin", data: "\x00\x01\x02\x03"},
		{name: "xml without markers", filename: "other.xml", data: `<?xml version="1.0"?><Invoice><Total>5</Total></Invoice>`},
		{name: "plain text", filename: "notes", data: "nothing to see"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DetectKind(tc.filename, []byte(tc.data)); !errors.Is(err, ErrUnknownKind) {
				t.Fatalf("expected ErrUnknownKind, got %v", err)
			}
		})
	}
}
