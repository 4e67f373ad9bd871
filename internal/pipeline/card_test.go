package pipeline

import (
	"strings"
	"testing"
)

const cardFixture = `<?xml version="1.0" encoding="UTF-8"?>
<EntryRaceCard>
  <Race>
    <RaceNumber>7</RaceNumber>
    <RaceName>Winter Sprint</RaceName>
    <ConditionText>FOR FILLIES THREE YEARS OLD AND UPWARD</ConditionText>
    <PostTime>13:05</PostTime>
    <Course><CourseType><Value>D</Value></CourseType></Course>
    <RaceType><Description>MAIDEN CLAIMING</Description></RaceType>
    <AgeRestriction><Value>3+</Value></AgeRestriction>
    <SexRestriction><Value>FILLIES</Value></SexRestriction>
    <Distance><DistanceId>600</DistanceId><DistanceUnit><Value>F</Value></DistanceUnit></Distance>
    <PurseUSA>$25,000</PurseUSA>
    <MaximumClaimPrice>$16,000</MaximumClaimPrice>
    <MinimumClaimPrice>$14,000</MinimumClaimPrice>
    <Starters>
      <Horse>
        <RegistrationNumber>H0123456</RegistrationNumber>
        <HorseName>Fleet Feather</HorseName>
        <FoalingDate>2019-03-15T00:00:00+00:00</FoalingDate>
        <YearOfBirth>2019</YearOfBirth>
        <FoalingArea>KY</FoalingArea>
        <BreedType><Value>TB</Value></BreedType>
        <Color><Value>B</Value></Color>
        <Sex><Value>F</Value></Sex>
        <BreederName>Sample Farm</BreederName>
        <Sire><RegistrationNumber>S0000001</RegistrationNumber></Sire>
        <Dam><RegistrationNumber>D0000001</RegistrationNumber></Dam>
      </Horse>
      <Trainer>
        <ExternalPartyId>T100</ExternalPartyId>
        <FirstName>Pat</FirstName>
        <LastName>Doe</LastName>
        <TypeSource>EQB</TypeSource>
      </Trainer>
      <Owner>
        <ExternalPartyId>O200</ExternalPartyId>
        <LastName>Sample Stable</LastName>
      </Owner>
      <Equipment><Value>B,L1</Value></Equipment>
      <Medication><Value>L</Value></Medication>
      <WeightCarried>122 lbs</WeightCarried>
      <ProgramNumber>1A</ProgramNumber>
      <PostPosition>1</PostPosition>
      <ClaimedPriceUSA>$16,000</ClaimedPriceUSA>
      <Odds>5/2</Odds>
    </Starters>
    <Starters>
      <Horse>
        <RegistrationNumber>H0999999</RegistrationNumber>
        <HorseName>Night Ledger</HorseName>
        <YearOfBirth>2018</YearOfBirth>
      </Horse>
      <ScratchIndicator><Value>S</Value></ScratchIndicator>
    </Starters>
  </Race>
</EntryRaceCard>`

func TestDecodeCard(t *testing.T) {
	batch, err := DecodeCard("SIMD20230101AQU_USA.xml", []byte(cardFixture))
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Races) != 1 {
		t.Fatalf("races=%d", len(batch.Races))
	}
	race := batch.Races[0]
	if race.RaceID != "AQU_2023-01-01_7" {
		t.Fatalf("race_id=%s", race.RaceID)
	}
	if race.TrackCode != "AQU" || race.RaceDate != "2023-01-01" || race.RaceNumber != 7 {
		t.Fatalf("race identity: %+v", race)
	}
	if race.Country == nil || *race.Country != "USA" {
		t.Fatalf("country=%v", race.Country)
	}
	if race.CourseType != "DIRT" {
		t.Fatalf("course=%s", race.CourseType)
	}
	if race.RaceTypeCode != "MCL" || race.ClassLevel != 1 || race.PurseCategory != "MAIDEN" {
		t.Fatalf("classification: %s/%d/%s", race.RaceTypeCode, race.ClassLevel, race.PurseCategory)
	}
	if race.DistanceYards == nil || *race.DistanceYards != 1320 {
		t.Fatalf("distance=%v", race.DistanceYards)
	}
	if race.PurseUSD == nil || *race.PurseUSD != 25000 {
		t.Fatalf("purse=%v", race.PurseUSD)
	}
	if race.MaxClaimPrice == nil || *race.MaxClaimPrice != 16000 {
		t.Fatalf("max claim=%v", race.MaxClaimPrice)
	}
	if race.MinAge == nil || *race.MinAge != 3 || race.MaxAge != nil {
		t.Fatalf("ages=%v/%v", race.MinAge, race.MaxAge)
	}
	if !race.FilliesOnly || race.FilliesAndMares {
		t.Fatalf("sex flags: %+v", race)
	}
	if race.DataSource != "past_performance" || race.SourceFile != "SIMD20230101AQU_USA.xml" {
		t.Fatalf("source: %s/%s", race.DataSource, race.SourceFile)
	}

	if len(batch.Entries) != 2 {
		t.Fatalf("entries=%d", len(batch.Entries))
	}
	first := batch.Entries[0]
	if first.EntryID != "AQU_2023-01-01_7_H0123456" {
		t.Fatalf("entry_id=%s", first.EntryID)
	}
	if first.ProgramNumber == nil || *first.ProgramNumber != "1A" {
		t.Fatalf("program=%v", first.ProgramNumber)
	}
	if first.PostPosition == nil || *first.PostPosition != 1 {
		t.Fatalf("post=%v", first.PostPosition)
	}
	if first.WeightLbs == nil || *first.WeightLbs != 122 {
		t.Fatalf("weight=%v", first.WeightLbs)
	}
	if first.AgeAtRace == nil || *first.AgeAtRace != 4 {
		t.Fatalf("age=%v", first.AgeAtRace)
	}
	if !first.HasBlinkers {
		t.Fatal("blinkers flag not set")
	}
	if !first.HasLasix {
		t.Fatal("lasix flag not set from medication")
	}
	if first.ClaimPrice == nil || *first.ClaimPrice != 16000 {
		t.Fatalf("claim=%v", first.ClaimPrice)
	}
	if first.MorningLineOdds == nil || *first.MorningLineOdds != 2.5 {
		t.Fatalf("odds=%v", first.MorningLineOdds)
	}
	if first.TrainerID == nil || *first.TrainerID != "T100" {
		t.Fatalf("trainer=%v", first.TrainerID)
	}
	if first.OwnerID == nil || *first.OwnerID != "O200" {
		t.Fatalf("owner=%v", first.OwnerID)
	}
	if first.Scratched {
		t.Fatal("first entry wrongly scratched")
	}

	second := batch.Entries[1]
	if !second.Scratched {
		t.Fatal("scratch indicator ignored")
	}
	if second.AgeAtRace == nil || *second.AgeAtRace != 5 {
		t.Fatalf("second age=%v", second.AgeAtRace)
	}
	if second.TrainerID != nil {
		t.Fatalf("second trainer=%v", second.TrainerID)
	}

	if len(batch.Horses) != 2 {
		t.Fatalf("horses=%d", len(batch.Horses))
	}
	horse := batch.Horses[0]
	if horse.RegistrationNumber != "H0123456" {
		t.Fatalf("registration=%s", horse.RegistrationNumber)
	}
	if horse.Name == nil || *horse.Name != "Fleet Feather" {
		t.Fatalf("name=%v", horse.Name)
	}
	if horse.FoalingDate == nil || *horse.FoalingDate != "2019-03-15" {
		t.Fatalf("foaling=%v", horse.FoalingDate)
	}
	if horse.YearOfBirth == nil || *horse.YearOfBirth != 2019 {
		t.Fatalf("yob=%v", horse.YearOfBirth)
	}
	if horse.SireRegistration == nil || *horse.SireRegistration != "S0000001" {
		t.Fatalf("sire=%v", horse.SireRegistration)
	}

	if len(batch.Trainers) != 1 || batch.Trainers[0].ExternalPartyID != "T100" {
		t.Fatalf("trainers: %+v", batch.Trainers)
	}
	if len(batch.Owners) != 1 || batch.Owners[0].ExternalPartyID != "O200" {
		t.Fatalf("owners: %+v", batch.Owners)
	}

	if len(batch.Equipment) != 2 {
		t.Fatalf("equipment rows=%d", len(batch.Equipment))
	}
	if batch.Equipment[0].Code != "BLINKERS" || batch.Equipment[0].FirstTime {
		t.Fatalf("equipment[0]: %+v", batch.Equipment[0])
	}
	if batch.Equipment[1].Code != "LASIX_FIRST_TIME" || !batch.Equipment[1].FirstTime {
		t.Fatalf("equipment[1]: %+v", batch.Equipment[1])
	}
	if batch.Equipment[1].Description != "Lasix First Time" {
		t.Fatalf("description=%s", batch.Equipment[1].Description)
	}
}

func TestDecodeCardFallbacks(t *testing.T) {
	t.Run("no date in filename", func(t *testing.T) {
		if _, err := DecodeCard("card.xml", []byte(cardFixture)); err == nil {
			t.Fatal("want error for missing date")
		}
	})

	t.Run("unknown venue", func(t *testing.T) {
		batch, err := DecodeCard("SIMD20230101.xml", []byte(cardFixture))
		if err != nil {
			t.Fatal(err)
		}
		if batch.Races[0].TrackCode != "UNK" {
			t.Fatalf("track=%s", batch.Races[0].TrackCode)
		}
	})

	t.Run("race without number dropped", func(t *testing.T) {
		fixture := strings.Replace(cardFixture, "<RaceNumber>7</RaceNumber>", "", 1)
		batch, err := DecodeCard("SIMD20230101AQU_USA.xml", []byte(fixture))
		if err != nil {
			t.Fatal(err)
		}
		if len(batch.Races) != 0 {
			t.Fatalf("races=%d", len(batch.Races))
		}
	})
}
