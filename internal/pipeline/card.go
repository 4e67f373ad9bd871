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

// Past-performance cards nest one Horse, Trainer and Owner under each
// Starters element; Race elements can sit at any depth under the root.

type cardRace struct {
	RaceNumber     string        `xml:"RaceNumber"`
	RaceName       string        `xml:"RaceName"`
	ConditionText  string        `xml:"ConditionText"`
	PostTime       string        `xml:"PostTime"`
	MaxClaimPrice  string        `xml:"MaximumClaimPrice"`
	MinClaimPrice  string        `xml:"MinimumClaimPrice"`
	CourseType     string        `xml:"Course>CourseType>Value"`
	RaceType       string        `xml:"RaceType>Description"`
	AgeRestriction string        `xml:"AgeRestriction>Value"`
	SexRestriction string        `xml:"SexRestriction>Value"`
	DistanceID     string        `xml:"Distance>DistanceId"`
	DistanceUnit   string        `xml:"Distance>DistanceUnit>Value"`
	PurseUSA       string        `xml:"PurseUSA"`
	Starters       []cardStarter `xml:"Starters"`
}

type cardStarter struct {
	Horse         cardHorse  `xml:"Horse"`
	Trainer       *cardParty `xml:"Trainer"`
	Owner         *cardParty `xml:"Owner"`
	Equipment     string     `xml:"Equipment>Value"`
	Medication    string     `xml:"Medication>Value"`
	WeightCarried string     `xml:"WeightCarried"`
	ProgramNumber string     `xml:"ProgramNumber"`
	PostPosition  string     `xml:"PostPosition"`
	ClaimedPrice  string     `xml:"ClaimedPriceUSA"`
	Odds          string     `xml:"Odds"`
	Scratch       string     `xml:"ScratchIndicator>Value"`
}

type cardHorse struct {
	RegistrationNumber string `xml:"RegistrationNumber"`
	HorseName          string `xml:"HorseName"`
	FoalingDate        string `xml:"FoalingDate"`
	YearOfBirth        string `xml:"YearOfBirth"`
	FoalingArea        string `xml:"FoalingArea"`
	BreedType          string `xml:"BreedType>Value"`
	Color              string `xml:"Color>Value"`
	Sex                string `xml:"Sex>Value"`
	BreederName        string `xml:"BreederName"`
	SireRegistration   string `xml:"Sire>RegistrationNumber"`
	DamRegistration    string `xml:"Dam>RegistrationNumber"`
}

type cardParty struct {
	ExternalPartyID string `xml:"ExternalPartyId"`
	FirstName       string `xml:"FirstName"`
	MiddleName      string `xml:"MiddleName"`
	LastName        string `xml:"LastName"`
	TypeSource      string `xml:"TypeSource"`
}

// DecodeCard turns one past-performance card file into canonical race,
// entry, horse and party records. Track code and date come from the
// filename; races without a number and starters without a registration
// number are dropped rather than failing the file.
func DecodeCard(filename string, data []byte) (internal.CardBatch, error) {
	track := ident.VenueCode(filename)
	if track == "" {
		track = "UNK"
	}
	date, ok := ident.CardDate(filename)
	if !ok {
		return internal.CardBatch{}, fmt.Errorf("card %s: filename carries no date", filepath.Base(filename))
	}
	country := ident.Region(filename)
	source := filepath.Base(filename)

	races, err := collectCardRaces(data)
	if err != nil {
		return internal.CardBatch{}, fmt.Errorf("card %s: %w", source, err)
	}

	var batch internal.CardBatch
	seenHorses := map[string]bool{}
	seenTrainers := map[string]bool{}
	seenOwners := map[string]bool{}

	for _, rc := range races {
		number, err := strconv.Atoi(strings.TrimSpace(rc.RaceNumber))
		if err != nil {
			continue
		}
		raceID := ident.RaceID(track, date, number)

		features := normalize.BuildRaceFeatures(normalize.RawRaceFields{
			CourseType:     rc.CourseType,
			RaceType:       rc.RaceType,
			AgeRestriction: rc.AgeRestriction,
			SexRestriction: rc.SexRestriction,
			Distance:       rc.DistanceID,
			DistanceUnit:   rc.DistanceUnit,
			Purse:          rc.PurseUSA,
		})

		race := internal.RaceRecord{
			RaceID:           raceID,
			TrackCode:        track,
			Country:          textPtr(country),
			RaceDate:         date,
			RaceNumber:       number,
			RaceName:         textPtr(rc.RaceName),
			ConditionsText:   textPtr(rc.ConditionText),
			PostTime:         textPtr(rc.PostTime),
			CourseType:       features.CourseType,
			RaceTypeCode:     features.Type.Code,
			RaceTypeText:     textPtr(features.Type.Description),
			ClassLevel:       features.Type.Level,
			PurseCategory:    features.Type.PurseCategory,
			TrackCondition:   features.TrackCondition,
			MinAge:           features.MinAge,
			MaxAge:           features.MaxAge,
			FilliesAndMares:  features.Sex.FilliesAndMares,
			ColtsAndGeldings: features.Sex.ColtsAndGeldings,
			FilliesOnly:      features.Sex.FilliesOnly,
			MaresOnly:        features.Sex.MaresOnly,
			ColtsOnly:        features.Sex.ColtsOnly,
			GeldingsOnly:     features.Sex.GeldingsOnly,
			DistanceYards:    features.DistanceYards,
			PurseUSD:         features.PurseUSD,
			MaxClaimPrice:    normalize.Numeric(rc.MaxClaimPrice),
			MinClaimPrice:    normalize.Numeric(rc.MinClaimPrice),
			SourceFile:       source,
			DataSource:       "past_performance",
		}
		batch.Races = append(batch.Races, race)

		for _, st := range rc.Starters {
			reg := strings.TrimSpace(st.Horse.RegistrationNumber)
			if reg == "" {
				continue
			}

			if !seenHorses[reg] {
				seenHorses[reg] = true
				batch.Horses = append(batch.Horses, horseRecord(reg, st.Horse))
			}
			trainerID := partyRecord(st.Trainer, seenTrainers, &batch.Trainers)
			ownerID := partyRecord(st.Owner, seenOwners, &batch.Owners)

			horse := normalize.BuildHorseFeatures(normalize.RawHorseFields{
				Equipment:  st.Equipment,
				Medication: st.Medication,
				Weight:     st.WeightCarried,
			})

			entry := internal.EntryRecord{
				EntryID:            ident.EntryID(raceID, reg),
				RaceID:             raceID,
				RegistrationNumber: reg,
				ProgramNumber:      textPtr(st.ProgramNumber),
				PostPosition:       intPtr(st.PostPosition),
				WeightLbs:          horse.WeightLbs,
				AgeAtRace:          ageAtRace(raceID, st.Horse.YearOfBirth),
				HasBlinkers:        horse.HasBlinkers,
				HasLasix:           horse.HasLasix,
				HasTongueTie:       horse.HasTongueTie,
				HasNasalStrip:      horse.HasNasalStrip,
				HasShadowRoll:      horse.HasShadowRoll,
				HasCheekPieces:     horse.HasCheekPieces,
				HasEarPlugs:        horse.HasEarPlugs,
				HasHood:            horse.HasHood,
				ClaimPrice:         normalize.Numeric(st.ClaimedPrice),
				MorningLineOdds:    normalize.Odds(st.Odds),
				TrainerID:          trainerID,
				OwnerID:            ownerID,
				Scratched:          strings.TrimSpace(st.Scratch) != "",
				SourceFile:         source,
				DataSource:         "past_performance",
			}
			batch.Entries = append(batch.Entries, entry)

			for _, code := range horse.EquipmentCodes {
				batch.Equipment = append(batch.Equipment, internal.EquipmentRow{
					RaceID:             raceID,
					RegistrationNumber: reg,
					Code:               code,
					Description:        normalize.EquipmentDescription(code),
					FirstTime:          strings.Contains(code, "FIRST_TIME"),
				})
			}
		}
	}

	return batch, nil
}

// collectCardRaces walks the token stream so Race elements are found at
// whatever depth the card format nests them.
func collectCardRaces(data []byte) ([]cardRace, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var races []cardRace
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Race" {
			continue
		}
		var rc cardRace
		if err := dec.DecodeElement(&rc, &se); err != nil {
			return nil, err
		}
		races = append(races, rc)
	}
	return races, nil
}

func horseRecord(reg string, h cardHorse) internal.HorseRecord {
	return internal.HorseRecord{
		RegistrationNumber: reg,
		Name:               textPtr(h.HorseName),
		FoalingDate:        normalize.CleanDate(h.FoalingDate),
		YearOfBirth:        intPtr(h.YearOfBirth),
		FoalingArea:        textPtr(h.FoalingArea),
		BreedType:          textPtr(h.BreedType),
		ColorCode:          textPtr(h.Color),
		SexCode:            textPtr(h.Sex),
		BreederName:        textPtr(h.BreederName),
		SireRegistration:   textPtr(h.SireRegistration),
		DamRegistration:    textPtr(h.DamRegistration),
	}
}

// partyRecord appends the party once per external ID and returns that ID
// for the entry row, or nil when the element is absent or unidentified.
func partyRecord(p *cardParty, seen map[string]bool, out *[]internal.PartyRecord) *string {
	if p == nil {
		return nil
	}
	id := strings.TrimSpace(p.ExternalPartyID)
	if id == "" {
		return nil
	}
	if !seen[id] {
		seen[id] = true
		*out = append(*out, internal.PartyRecord{
			ExternalPartyID: id,
			FirstName:       textPtr(p.FirstName),
			MiddleName:      textPtr(p.MiddleName),
			LastName:        textPtr(p.LastName),
			TypeSource:      textPtr(p.TypeSource),
		})
	}
	return &id
}

func ageAtRace(raceID, yearOfBirth string) *int {
	year, ok := ident.RaceYear(raceID)
	if !ok {
		return nil
	}
	yob := intPtr(yearOfBirth)
	if yob == nil {
		return nil
	}
	age := year - *yob
	return &age
}

func textPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

// numericInt parses through the money/number cleaner and truncates, for
// fields that arrive as "3.00" but mean an integer position or count.
func numericInt(s string) *int {
	n := normalize.Numeric(s)
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}
