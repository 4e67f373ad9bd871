package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"racebase/internal"
	"racebase/internal/normalize"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := db.seed(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS horses (
  registration_number TEXT PRIMARY KEY,
  horse_name TEXT,
  foaling_date TEXT,
  year_of_birth INTEGER,
  foaling_area TEXT,
  breed_type TEXT,
  color_code TEXT,
  sex_code TEXT,
  breeder_name TEXT,
  sire_registration_number TEXT,
  dam_registration_number TEXT,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_horses_name ON horses(horse_name);

CREATE TABLE IF NOT EXISTS trainers (
  external_party_id TEXT PRIMARY KEY,
  first_name TEXT,
  middle_name TEXT,
  last_name TEXT,
  type_source TEXT,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS owners (
  external_party_id TEXT PRIMARY KEY,
  first_name TEXT,
  middle_name TEXT,
  last_name TEXT,
  type_source TEXT,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tracks (
  track_code TEXT PRIMARY KEY,
  track_name TEXT NOT NULL,
  location TEXT,
  country TEXT,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS races (
  race_id TEXT PRIMARY KEY,
  track_code TEXT NOT NULL,
  track_name TEXT,
  country TEXT,
  race_date TEXT NOT NULL,
  race_number INTEGER NOT NULL,
  race_name TEXT,
  conditions_text TEXT,
  post_time TEXT,
  course_type_code TEXT NOT NULL,
  race_type_code TEXT NOT NULL,
  race_type_description TEXT,
  class_level INTEGER NOT NULL,
  purse_category TEXT NOT NULL,
  track_condition TEXT NOT NULL,
  min_age INTEGER,
  max_age INTEGER,
  fillies_and_mares INTEGER NOT NULL DEFAULT 0,
  colts_and_geldings INTEGER NOT NULL DEFAULT 0,
  fillies_only INTEGER NOT NULL DEFAULT 0,
  mares_only INTEGER NOT NULL DEFAULT 0,
  colts_only INTEGER NOT NULL DEFAULT 0,
  geldings_only INTEGER NOT NULL DEFAULT 0,
  distance_yards INTEGER,
  purse_usd REAL,
  max_claim_price REAL,
  min_claim_price REAL,
  winning_time REAL,
  final_fraction_time REAL,
  weather TEXT,
  wind_speed REAL,
  wind_direction TEXT,
  source_file TEXT NOT NULL,
  data_source TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_races_track_date ON races(track_code, race_date);
CREATE INDEX IF NOT EXISTS idx_races_type ON races(race_type_code);

CREATE TABLE IF NOT EXISTS entries (
  entry_id TEXT PRIMARY KEY,
  race_id TEXT NOT NULL,
  registration_number TEXT NOT NULL,
  program_number TEXT,
  post_position INTEGER,
  weight_lbs INTEGER,
  age_at_race INTEGER,
  has_blinkers INTEGER NOT NULL DEFAULT 0,
  has_lasix INTEGER NOT NULL DEFAULT 0,
  has_tongue_tie INTEGER NOT NULL DEFAULT 0,
  has_nasal_strip INTEGER NOT NULL DEFAULT 0,
  has_shadow_roll INTEGER NOT NULL DEFAULT 0,
  has_cheek_pieces INTEGER NOT NULL DEFAULT 0,
  has_ear_plugs INTEGER NOT NULL DEFAULT 0,
  has_hood INTEGER NOT NULL DEFAULT 0,
  claim_price REAL,
  morning_line_odds REAL,
  trainer_id TEXT,
  owner_id TEXT,
  scratched INTEGER NOT NULL DEFAULT 0,
  official_finish_position INTEGER,
  final_time REAL,
  speed_rating REAL,
  win_payoff REAL,
  place_payoff REAL,
  show_payoff REAL,
  actual_odds REAL,
  comment TEXT,
  jockey_id TEXT,
  source_file TEXT NOT NULL,
  data_source TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(race_id) REFERENCES races(race_id),
  FOREIGN KEY(registration_number) REFERENCES horses(registration_number)
);
CREATE INDEX IF NOT EXISTS idx_entries_race ON entries(race_id);
CREATE INDEX IF NOT EXISTS idx_entries_registration ON entries(registration_number);

CREATE TABLE IF NOT EXISTS race_equipment (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  race_id TEXT NOT NULL,
  registration_number TEXT NOT NULL,
  equipment_code TEXT NOT NULL,
  equipment_description TEXT,
  is_first_time INTEGER NOT NULL DEFAULT 0,
  UNIQUE(race_id, registration_number, equipment_code)
);

CREATE TABLE IF NOT EXISTS race_fractions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  race_id TEXT NOT NULL,
  call_position INTEGER NOT NULL,
  distance_yards INTEGER,
  time_seconds REAL NOT NULL,
  leader_at_call TEXT,
  UNIQUE(race_id, call_position)
);

CREATE TABLE IF NOT EXISTS race_wagering (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  race_id TEXT NOT NULL,
  wager_type TEXT NOT NULL,
  pool_total REAL,
  winning_combination TEXT,
  payout_amount REAL,
  number_of_winners REAL,
  UNIQUE(race_id, wager_type)
);

CREATE TABLE IF NOT EXISTS position_calls (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  race_id TEXT NOT NULL,
  registration_number TEXT NOT NULL,
  call_position INTEGER NOT NULL,
  position INTEGER NOT NULL,
  lengths_behind REAL,
  UNIQUE(race_id, registration_number, call_position)
);

CREATE TABLE IF NOT EXISTS race_types (
  race_type_code TEXT PRIMARY KEY,
  description TEXT NOT NULL,
  class_level INTEGER NOT NULL,
  purse_category TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment_types (
  equipment_code TEXT PRIMARY KEY,
  description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  source_file TEXT NOT NULL,
  counts_json TEXT NOT NULL,
  duration_ms REAL NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) seed() error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	typeStmt, err := tx.Prepare(`
INSERT INTO race_types (race_type_code, description, class_level, purse_category)
VALUES (?, ?, ?, ?)
ON CONFLICT(race_type_code) DO UPDATE SET
  description=excluded.description,
  class_level=excluded.class_level,
  purse_category=excluded.purse_category
`)
	if err != nil {
		return err
	}
	defer typeStmt.Close()

	for _, ti := range normalize.ReferenceTypes() {
		if _, err := typeStmt.Exec(ti.Code, ti.Description, ti.Level, ti.Purse); err != nil {
			return err
		}
	}

	equipStmt, err := tx.Prepare(`
INSERT INTO equipment_types (equipment_code, description)
VALUES (?, ?)
ON CONFLICT(equipment_code) DO UPDATE SET description=excluded.description
`)
	if err != nil {
		return err
	}
	defer equipStmt.Close()

	for _, ei := range normalize.ReferenceEquipment() {
		if _, err := equipStmt.Exec(ei.Code, ei.Description); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) UpsertHorses(horses []internal.HorseRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO horses (
  registration_number, horse_name, foaling_date, year_of_birth, foaling_area,
  breed_type, color_code, sex_code, breeder_name,
  sire_registration_number, dam_registration_number, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(registration_number) DO UPDATE SET
  horse_name=COALESCE(excluded.horse_name, horse_name),
  foaling_date=COALESCE(excluded.foaling_date, foaling_date),
  year_of_birth=COALESCE(excluded.year_of_birth, year_of_birth),
  foaling_area=COALESCE(excluded.foaling_area, foaling_area),
  breed_type=COALESCE(excluded.breed_type, breed_type),
  color_code=COALESCE(excluded.color_code, color_code),
  sex_code=COALESCE(excluded.sex_code, sex_code),
  breeder_name=COALESCE(excluded.breeder_name, breeder_name),
  sire_registration_number=COALESCE(excluded.sire_registration_number, sire_registration_number),
  dam_registration_number=COALESCE(excluded.dam_registration_number, dam_registration_number),
  updated_at=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range horses {
		if _, err := stmt.Exec(
			h.RegistrationNumber, h.Name, h.FoalingDate, h.YearOfBirth, h.FoalingArea,
			h.BreedType, h.ColorCode, h.SexCode, h.BreederName,
			h.SireRegistration, h.DamRegistration,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) UpsertTrainers(parties []internal.PartyRecord) error {
	return d.upsertParties("trainers", parties)
}

func (d *DB) UpsertOwners(parties []internal.PartyRecord) error {
	return d.upsertParties("owners", parties)
}

func (d *DB) upsertParties(table string, parties []internal.PartyRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO ` + table + ` (external_party_id, first_name, middle_name, last_name, type_source, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(external_party_id) DO UPDATE SET
  first_name=COALESCE(excluded.first_name, first_name),
  middle_name=COALESCE(excluded.middle_name, middle_name),
  last_name=COALESCE(excluded.last_name, last_name),
  type_source=COALESCE(excluded.type_source, type_source),
  updated_at=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range parties {
		if _, err := stmt.Exec(p.ExternalPartyID, p.FirstName, p.MiddleName, p.LastName, p.TypeSource); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) UpsertTracks(tracks []internal.TrackRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO tracks (track_code, track_name, location, country, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(track_code) DO UPDATE SET
  track_name=excluded.track_name,
  location=excluded.location,
  country=excluded.country,
  updated_at=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tracks {
		if _, err := stmt.Exec(t.Code, t.Name, t.Location, t.Country); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) UpsertRaces(races []internal.RaceRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO races (
  race_id, track_code, track_name, country, race_date, race_number,
  race_name, conditions_text, post_time,
  course_type_code, race_type_code, race_type_description, class_level,
  purse_category, track_condition,
  min_age, max_age,
  fillies_and_mares, colts_and_geldings, fillies_only, mares_only, colts_only, geldings_only,
  distance_yards, purse_usd, max_claim_price, min_claim_price,
  source_file, data_source, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(race_id) DO UPDATE SET
  track_name=COALESCE(excluded.track_name, track_name),
  country=COALESCE(excluded.country, country),
  race_name=COALESCE(excluded.race_name, race_name),
  conditions_text=COALESCE(excluded.conditions_text, conditions_text),
  post_time=COALESCE(excluded.post_time, post_time),
  course_type_code=excluded.course_type_code,
  race_type_code=excluded.race_type_code,
  race_type_description=COALESCE(excluded.race_type_description, race_type_description),
  class_level=excluded.class_level,
  purse_category=excluded.purse_category,
  track_condition=excluded.track_condition,
  min_age=COALESCE(excluded.min_age, min_age),
  max_age=COALESCE(excluded.max_age, max_age),
  fillies_and_mares=excluded.fillies_and_mares,
  colts_and_geldings=excluded.colts_and_geldings,
  fillies_only=excluded.fillies_only,
  mares_only=excluded.mares_only,
  colts_only=excluded.colts_only,
  geldings_only=excluded.geldings_only,
  distance_yards=COALESCE(excluded.distance_yards, distance_yards),
  purse_usd=COALESCE(excluded.purse_usd, purse_usd),
  max_claim_price=COALESCE(excluded.max_claim_price, max_claim_price),
  min_claim_price=COALESCE(excluded.min_claim_price, min_claim_price),
  source_file=excluded.source_file,
  data_source=excluded.data_source,
  updated_at=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range races {
		if _, err := stmt.Exec(
			r.RaceID, r.TrackCode, r.TrackName, r.Country, r.RaceDate, r.RaceNumber,
			r.RaceName, r.ConditionsText, r.PostTime,
			r.CourseType, r.RaceTypeCode, r.RaceTypeText, r.ClassLevel,
			r.PurseCategory, r.TrackCondition,
			r.MinAge, r.MaxAge,
			r.FilliesAndMares, r.ColtsAndGeldings, r.FilliesOnly, r.MaresOnly, r.ColtsOnly, r.GeldingsOnly,
			r.DistanceYards, r.PurseUSD, r.MaxClaimPrice, r.MinClaimPrice,
			r.SourceFile, r.DataSource,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) UpsertEntries(entries []internal.EntryRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO entries (
  entry_id, race_id, registration_number, program_number, post_position,
  weight_lbs, age_at_race,
  has_blinkers, has_lasix, has_tongue_tie, has_nasal_strip,
  has_shadow_roll, has_cheek_pieces, has_ear_plugs, has_hood,
  claim_price, morning_line_odds, trainer_id, owner_id, scratched,
  source_file, data_source, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(entry_id) DO UPDATE SET
  program_number=COALESCE(excluded.program_number, program_number),
  post_position=COALESCE(excluded.post_position, post_position),
  weight_lbs=COALESCE(excluded.weight_lbs, weight_lbs),
  age_at_race=COALESCE(excluded.age_at_race, age_at_race),
  has_blinkers=excluded.has_blinkers,
  has_lasix=excluded.has_lasix,
  has_tongue_tie=excluded.has_tongue_tie,
  has_nasal_strip=excluded.has_nasal_strip,
  has_shadow_roll=excluded.has_shadow_roll,
  has_cheek_pieces=excluded.has_cheek_pieces,
  has_ear_plugs=excluded.has_ear_plugs,
  has_hood=excluded.has_hood,
  claim_price=COALESCE(excluded.claim_price, claim_price),
  morning_line_odds=COALESCE(excluded.morning_line_odds, morning_line_odds),
  trainer_id=COALESCE(excluded.trainer_id, trainer_id),
  owner_id=COALESCE(excluded.owner_id, owner_id),
  scratched=excluded.scratched,
  source_file=excluded.source_file,
  data_source=excluded.data_source,
  updated_at=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(
			e.EntryID, e.RaceID, e.RegistrationNumber, e.ProgramNumber, e.PostPosition,
			e.WeightLbs, e.AgeAtRace,
			e.HasBlinkers, e.HasLasix, e.HasTongueTie, e.HasNasalStrip,
			e.HasShadowRoll, e.HasCheekPieces, e.HasEarPlugs, e.HasHood,
			e.ClaimPrice, e.MorningLineOdds, e.TrainerID, e.OwnerID, e.Scratched,
			e.SourceFile, e.DataSource,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) UpsertEquipment(rows []internal.EquipmentRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO race_equipment (race_id, registration_number, equipment_code, equipment_description, is_first_time)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(race_id, registration_number, equipment_code) DO UPDATE SET
  equipment_description=excluded.equipment_description,
  is_first_time=excluded.is_first_time
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RaceID, r.RegistrationNumber, r.Code, r.Description, r.FirstTime); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ApplyRaceResult folds chart results into an already ingested race.
// Returns the number of race rows updated; zero means the card for this
// race has not been ingested yet.
func (d *DB) ApplyRaceResult(res internal.RaceResult) (int64, error) {
	result, err := d.conn.Exec(`
UPDATE races SET
  winning_time=?,
  final_fraction_time=?,
  track_condition=?,
  weather=?,
  wind_speed=?,
  wind_direction=?,
  updated_at=CURRENT_TIMESTAMP
WHERE race_id=?
`, res.WinningTime, res.FinalFractionTime, res.TrackCondition, res.Weather, res.WindSpeed, res.WindDirection, res.RaceID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *DB) ApplyEntryResult(res internal.EntryResult) (int64, error) {
	result, err := d.conn.Exec(`
UPDATE entries SET
  official_finish_position=?,
  final_time=?,
  speed_rating=?,
  win_payoff=?,
  place_payoff=?,
  show_payoff=?,
  actual_odds=?,
  comment=?,
  jockey_id=?,
  trainer_id=COALESCE(?, trainer_id),
  updated_at=CURRENT_TIMESTAMP
WHERE entry_id=?
`, res.FinishPosition, res.FinalTime, res.SpeedRating,
		res.WinPayoff, res.PlacePayoff, res.ShowPayoff,
		res.ActualOdds, res.Comment, res.JockeyID, res.TrainerID, res.EntryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *DB) InsertFractions(rows []internal.FractionRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO race_fractions (race_id, call_position, distance_yards, time_seconds, leader_at_call)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(race_id, call_position) DO UPDATE SET
  distance_yards=excluded.distance_yards,
  time_seconds=excluded.time_seconds,
  leader_at_call=excluded.leader_at_call
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RaceID, r.CallPosition, r.DistanceYards, r.TimeSeconds, r.LeaderAtCall); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertWagers(rows []internal.WagerRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO race_wagering (race_id, wager_type, pool_total, winning_combination, payout_amount, number_of_winners)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(race_id, wager_type) DO UPDATE SET
  pool_total=excluded.pool_total,
  winning_combination=excluded.winning_combination,
  payout_amount=excluded.payout_amount,
  number_of_winners=excluded.number_of_winners
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RaceID, r.WagerType, r.PoolTotal, r.Combinations, r.Payout, r.WinnerCount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertPositionCalls(rows []internal.PositionCallRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO position_calls (race_id, registration_number, call_position, position, lengths_behind)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(race_id, registration_number, call_position) DO UPDATE SET
  position=excluded.position,
  lengths_behind=excluded.lengths_behind
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RaceID, r.RegistrationNumber, r.Call, r.Position, r.LengthsBehind); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// HorseRefs lists every named horse for the in-memory matcher.
func (d *DB) HorseRefs() ([]internal.HorseRef, error) {
	rows, err := d.conn.Query(`
SELECT registration_number, horse_name, year_of_birth
FROM horses WHERE horse_name IS NOT NULL
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.HorseRef
	for rows.Next() {
		var ref internal.HorseRef
		if err := rows.Scan(&ref.RegistrationNumber, &ref.Name, &ref.YearOfBirth); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// AllTracks loads the track master data for the in-memory venue index.
func (d *DB) AllTracks() ([]internal.TrackRecord, error) {
	rows, err := d.conn.Query(`SELECT track_code, track_name, location, country FROM tracks ORDER BY track_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.TrackRecord
	for rows.Next() {
		var t internal.TrackRecord
		if err := rows.Scan(&t.Code, &t.Name, &t.Location, &t.Country); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (d *DB) Counts() (map[string]int, error) {
	tables := []string{
		"horses", "trainers", "owners", "tracks", "races", "entries",
		"race_equipment", "race_fractions", "race_wagering", "position_calls",
	}

	out := map[string]int{}
	for _, table := range tables {
		var n int
		if err := d.conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			return nil, err
		}
		out[table] = n
	}
	return out, nil
}

type DistanceStats struct {
	Min     *int
	Max     *int
	Avg     *float64
	Missing int
}

// RaceDistanceStats summarizes normalized distances for sanity checks; a
// min below 220 yards or a max above 4400 usually means a conversion bug.
func (d *DB) RaceDistanceStats() (DistanceStats, error) {
	var stats DistanceStats
	err := d.conn.QueryRow(`
SELECT MIN(distance_yards), MAX(distance_yards), AVG(distance_yards),
       SUM(CASE WHEN distance_yards IS NULL THEN 1 ELSE 0 END)
FROM races
`).Scan(&stats.Min, &stats.Max, &stats.Avg, &stats.Missing)
	if err != nil {
		return DistanceStats{}, err
	}
	return stats, nil
}

func (d *DB) TrackCodes() ([]string, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT track_code FROM races ORDER BY track_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

func (d *DB) ExportRaces(trackCode, raceDate string) ([]internal.RaceExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  r.race_id, r.track_code, r.track_name, r.race_date, r.race_number,
  r.course_type_code, r.race_type_code, r.class_level, r.purse_category,
  r.track_condition, r.distance_yards, r.purse_usd, r.winning_time,
  (SELECT COUNT(*) FROM entries e WHERE e.race_id = r.race_id) AS entry_count
FROM races r
WHERE (? = '' OR r.track_code = ?)
  AND (? = '' OR r.race_date = ?)
ORDER BY r.race_date, r.track_code, r.race_number
`, trackCode, trackCode, raceDate, raceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RaceExportRow
	for rows.Next() {
		var row internal.RaceExportRow
		if err := rows.Scan(
			&row.RaceID, &row.TrackCode, &row.TrackName, &row.RaceDate, &row.RaceNumber,
			&row.CourseType, &row.RaceTypeCode, &row.ClassLevel, &row.PurseCategory,
			&row.TrackCondition, &row.DistanceYards, &row.PurseUSD, &row.WinningTime,
			&row.EntryCount,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) ExportEntries(trackCode, raceDate string) ([]internal.EntryExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  e.entry_id, e.race_id, e.registration_number, h.horse_name,
  e.program_number, e.post_position, e.weight_lbs, e.morning_line_odds,
  e.official_finish_position, e.speed_rating, e.actual_odds, e.scratched
FROM entries e
JOIN races r ON r.race_id = e.race_id
LEFT JOIN horses h ON h.registration_number = e.registration_number
WHERE (? = '' OR r.track_code = ?)
  AND (? = '' OR r.race_date = ?)
ORDER BY e.race_id, e.post_position
`, trackCode, trackCode, raceDate, raceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EntryExportRow
	for rows.Next() {
		var row internal.EntryExportRow
		if err := rows.Scan(
			&row.EntryID, &row.RaceID, &row.RegistrationNumber, &row.HorseName,
			&row.ProgramNumber, &row.PostPosition, &row.WeightLbs, &row.MorningLineOdds,
			&row.FinishPosition, &row.SpeedRating, &row.ActualOdds, &row.Scratched,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(kind internal.SourceKind, sourceFile string, counts map[string]int, durationMs float64) error {
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`
INSERT INTO runs (kind, source_file, counts_json, duration_ms) VALUES (?, ?, ?, ?)
`, string(kind), sourceFile, string(countsJSON), durationMs)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
