package normalize

import (
	"slices"
	"strconv"
	"strings"
)

type RawRaceFields struct {
	CourseType     string
	TrackCondition string
	RaceType       string
	AgeRestriction string
	SexRestriction string
	Distance       string
	DistanceUnit   string
	Purse          string
}

type RaceFeatures struct {
	CourseType     string
	TrackCondition string
	Type           Classification
	MinAge         *int
	MaxAge         *int
	Sex            SexFlags
	DistanceYards  *int
	PurseUSD       *float64
}

// BuildRaceFeatures runs every race-level normalizer over one record's raw
// fields. Each field normalizes independently; a bad value leaves its own
// output empty without affecting the rest.
func BuildRaceFeatures(raw RawRaceFields) RaceFeatures {
	f := RaceFeatures{
		CourseType:     CourseType(raw.CourseType),
		TrackCondition: TrackCondition(raw.TrackCondition),
		Type:           RaceType(raw.RaceType),
		Sex:            SexRestriction(raw.SexRestriction),
		PurseUSD:       Numeric(raw.Purse),
	}
	f.MinAge, f.MaxAge = AgeRange(raw.AgeRestriction)

	if s := strings.TrimSpace(raw.Distance); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			unit := strings.TrimSpace(raw.DistanceUnit)
			if unit == "" {
				unit = InferUnit(v)
			}
			yards := Distance(v, unit)
			f.DistanceYards = &yards
		}
	}

	return f
}

type RawHorseFields struct {
	Equipment  string
	Medication string
	Weight     string
}

type HorseFeatures struct {
	EquipmentCodes  []string
	MedicationCodes []string
	WeightLbs       *int

	HasBlinkers    bool
	HasLasix       bool
	HasTongueTie   bool
	HasNasalStrip  bool
	HasShadowRoll  bool
	HasCheekPieces bool
	HasEarPlugs    bool
	HasHood        bool
}

// BuildHorseFeatures normalizes one starter's equipment, medication and
// weight. Lasix counts whether it arrives as medication or equipment.
func BuildHorseFeatures(raw RawHorseFields) HorseFeatures {
	equipment := Equipment(raw.Equipment)
	medication := Equipment(raw.Medication)

	return HorseFeatures{
		EquipmentCodes:  equipment,
		MedicationCodes: medication,
		WeightLbs:       Weight(raw.Weight),
		HasBlinkers:     slices.Contains(equipment, "BLINKERS"),
		HasLasix:        slices.Contains(medication, "LASIX") || slices.Contains(equipment, "LASIX"),
		HasTongueTie:    slices.Contains(equipment, "TONGUE_TIE"),
		HasNasalStrip:   slices.Contains(equipment, "NASAL_STRIP"),
		HasShadowRoll:   slices.Contains(equipment, "SHADOW_ROLL"),
		HasCheekPieces:  slices.Contains(equipment, "CHEEK_PIECES"),
		HasEarPlugs:     slices.Contains(equipment, "EAR_PLUGS"),
		HasHood:         slices.Contains(equipment, "HOOD"),
	}
}
