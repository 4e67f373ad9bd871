package normalize

import "testing"

func TestCourseType(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "dirt letter", input: "D", want: "DIRT"},
		{name: "dirt lowercase", input: "dirt", want: "DIRT"},
		{name: "condition hints dirt", input: "GOOD", want: "DIRT"},
		{name: "turf letter", input: "T", want: "TURF"},
		{name: "going phrase hints turf", input: "GOOD TO FIRM", want: "TURF"},
		{name: "synthetic brand", input: "TAPETA", want: "SYNTHETIC"},
		{name: "empty", input: "", want: "UNKNOWN"},
		{name: "unmapped", input: "STEEPLECHASE", want: "UNKNOWN"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CourseType(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestTrackCondition(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fast abbrev", input: "FT", want: "FAST"},
		{name: "good lowercase", input: "gd", want: "GOOD"},
		{name: "wet fast phrase", input: "WET FAST", want: "WET_FAST"},
		{name: "yielding letter", input: "Y", want: "YIELDING"},
		{name: "empty", input: "", want: "UNKNOWN"},
		{name: "unmapped", input: "SEALED", want: "OTHER"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TrackCondition(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
