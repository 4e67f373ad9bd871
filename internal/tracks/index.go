package tracks

import "racebase/internal"

type Index struct {
	ByCode map[string]internal.TrackRecord
}

func BuildIndex(records []internal.TrackRecord) *Index {
	idx := &Index{ByCode: map[string]internal.TrackRecord{}}
	for _, t := range records {
		idx.ByCode[t.Code] = t
	}
	return idx
}

// Name returns the display name for a venue code, nil when unknown.
func (i *Index) Name(code string) *string {
	t, ok := i.ByCode[code]
	if !ok {
		return nil
	}
	name := t.Name
	return &name
}
