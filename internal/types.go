package internal

type SourceKind string

const (
	KindCardXML     SourceKind = "card_xml"
	KindChartXML    SourceKind = "chart_xml"
	KindChartPDF    SourceKind = "chart_pdf"
	KindEntriesHTML SourceKind = "entries_html"
	KindEntriesXLSX SourceKind = "entries_xlsx"
)

type MatchReason string

const (
	MatchExact MatchReason = "EXACT"
	MatchFuzzy MatchReason = "FUZZY"
	MatchNone  MatchReason = "NONE"
)

type HorseRecord struct {
	RegistrationNumber string
	Name               *string
	FoalingDate        *string
	YearOfBirth        *int
	FoalingArea        *string
	BreedType          *string
	ColorCode          *string
	SexCode            *string
	BreederName        *string
	SireRegistration   *string
	DamRegistration    *string
}

// PartyRecord covers trainers and owners; both families share the same
// party fields in the source records.
type PartyRecord struct {
	ExternalPartyID string
	FirstName       *string
	MiddleName      *string
	LastName        *string
	TypeSource      *string
}

type RaceRecord struct {
	RaceID         string
	TrackCode      string
	TrackName      *string
	Country        *string
	RaceDate       string
	RaceNumber     int
	RaceName       *string
	ConditionsText *string
	PostTime       *string

	CourseType     string
	RaceTypeCode   string
	RaceTypeText   *string
	ClassLevel     int
	PurseCategory  string
	TrackCondition string

	MinAge           *int
	MaxAge           *int
	FilliesAndMares  bool
	ColtsAndGeldings bool
	FilliesOnly      bool
	MaresOnly        bool
	ColtsOnly        bool
	GeldingsOnly     bool

	DistanceYards *int
	PurseUSD      *float64
	MaxClaimPrice *float64
	MinClaimPrice *float64

	SourceFile string
	DataSource string
}

type EntryRecord struct {
	EntryID            string
	RaceID             string
	RegistrationNumber string
	ProgramNumber      *string
	PostPosition       *int
	WeightLbs          *int
	AgeAtRace          *int

	HasBlinkers    bool
	HasLasix       bool
	HasTongueTie   bool
	HasNasalStrip  bool
	HasShadowRoll  bool
	HasCheekPieces bool
	HasEarPlugs    bool
	HasHood        bool

	ClaimPrice      *float64
	MorningLineOdds *float64
	TrainerID       *string
	OwnerID         *string
	Scratched       bool

	SourceFile string
	DataSource string
}

type EquipmentRow struct {
	RaceID             string
	RegistrationNumber string
	Code               string
	Description        string
	FirstTime          bool
}

type RaceResult struct {
	RaceID            string
	WinningTime       *float64
	FinalFractionTime *float64
	TrackCondition    string
	Weather           *string
	WindSpeed         *float64
	WindDirection     *string
}

type EntryResult struct {
	EntryID            string
	RaceID             string
	RegistrationNumber string
	FinishPosition     *int
	FinalTime          *float64
	SpeedRating        *float64
	WinPayoff          *float64
	PlacePayoff        *float64
	ShowPayoff         *float64
	ActualOdds         *float64
	Comment            *string
	JockeyID           *string
	TrainerID          *string
}

type FractionRow struct {
	RaceID        string
	CallPosition  int
	DistanceYards *int
	TimeSeconds   float64
	LeaderAtCall  *string
}

type WagerRow struct {
	RaceID       string
	WagerType    string
	PoolTotal    *float64
	Combinations *string
	Payout       *float64
	WinnerCount  *float64
}

type PositionCallRow struct {
	RaceID             string
	RegistrationNumber string
	Call               int
	Position           int
	LengthsBehind      *float64
}

type ChartCall struct {
	Call     int
	Position int
	Lengths  *float64
}

// ChartEntry carries a chart result row before the horse name has been
// resolved to a registration number.
type ChartEntry struct {
	RaceID    string
	HorseName string
	Result    EntryResult
	Calls     []ChartCall
}

// ChartBatch carries everything one result chart yields. Races stays empty
// for XML charts, which only update races already loaded from cards; the
// PDF decoder fills it because a chart PDF may be the only source that ever
// mentions a race.
type ChartBatch struct {
	TrackCode string
	RaceDate  string
	Races     []RaceRecord
	Results   []RaceResult
	Entries   []ChartEntry
	Fractions []FractionRow
	Wagers    []WagerRow
}

type CardBatch struct {
	Races     []RaceRecord
	Entries   []EntryRecord
	Equipment []EquipmentRow
	Horses    []HorseRecord
	Trainers  []PartyRecord
	Owners    []PartyRecord
}

// SheetEntry carries an entry-sheet row before name resolution; Entry has
// every field except the identifiers that need a registration number.
type SheetEntry struct {
	RaceID    string
	HorseName string
	Entry     EntryRecord
}

type SheetBatch struct {
	Races   []RaceRecord
	Entries []SheetEntry
}

type TrackRecord struct {
	Code     string
	Name     string
	Location *string
	Country  *string
}

type HorseRef struct {
	RegistrationNumber string
	Name               string
	YearOfBirth        *int
}

type RaceExportRow struct {
	RaceID         string
	TrackCode      string
	TrackName      *string
	RaceDate       string
	RaceNumber     int
	CourseType     string
	RaceTypeCode   string
	ClassLevel     int
	PurseCategory  string
	TrackCondition string
	DistanceYards  *int
	PurseUSD       *float64
	WinningTime    *float64
	EntryCount     int
}

type EntryExportRow struct {
	EntryID            string
	RaceID             string
	RegistrationNumber string
	HorseName          *string
	ProgramNumber      *string
	PostPosition       *int
	WeightLbs          *int
	MorningLineOdds    *float64
	FinishPosition     *int
	SpeedRating        *float64
	ActualOdds         *float64
	Scratched          bool
}
