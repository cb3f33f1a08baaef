package model

import "fmt"

// Clock constants for the 150-second countdown. The timeline clock counts
// down, so "time > TeleopCutoff" is the sandstorm period.
const (
	MatchLength  = 150.0
	TeleopCutoff = 135.0
)

// Piece is one of the two scorable game-piece kinds.
type Piece string

const (
	PieceCargo Piece = "cargo"
	PiecePanel Piece = "panel"
)

// Pieces lists both game-piece kinds in a stable order.
var Pieces = []Piece{PieceCargo, PiecePanel}

// Zone identifies where an intake happened on the field.
type Zone string

const (
	ZoneLeftLoadingStation  Zone = "leftLoadingStation"
	ZoneRightLoadingStation Zone = "rightLoadingStation"
	ZoneLeftDepot           Zone = "leftDepot"
	ZoneRightDepot          Zone = "rightDepot"
	ZoneField               Zone = "field"

	// ZoneLoadingStation is a semantic filter value matching either concrete
	// loading-station zone. It never appears on a stored action.
	ZoneLoadingStation Zone = "loadingStation"
)

var knownZones = map[Zone]bool{
	ZoneLeftLoadingStation:  true,
	ZoneRightLoadingStation: true,
	ZoneLeftDepot:           true,
	ZoneRightDepot:          true,
	ZoneField:               true,
}

var knownPieces = map[Piece]bool{
	PieceCargo: true,
	PiecePanel: true,
}

// ActionType tags an entry on a robot's timeline.
type ActionType string

const (
	ActionPlacement    ActionType = "placement"
	ActionIntake       ActionType = "intake"
	ActionDrop         ActionType = "drop"
	ActionStartDefense ActionType = "startDefense"
	ActionEndDefense   ActionType = "endDefense"
	ActionIncap        ActionType = "incap"
	ActionUnincap      ActionType = "unincap"
	ActionClimb        ActionType = "climb"
	ActionPinningFoul  ActionType = "pinningFoul"
)

var knownActionTypes = map[ActionType]bool{
	ActionPlacement:    true,
	ActionIntake:       true,
	ActionDrop:         true,
	ActionStartDefense: true,
	ActionEndDefense:   true,
	ActionIncap:        true,
	ActionUnincap:      true,
	ActionClimb:        true,
	ActionPinningFoul:  true,
}

// ClimbLevels holds the hab levels reached at climb time: the scouted robot
// and its two alliance partners.
type ClimbLevels struct {
	Self   int `json:"self"`
	Robot1 int `json:"robot1"`
	Robot2 int `json:"robot2"`
}

// Action is one tagged event on a robot's timeline. Kind-specific fields are
// zero/nil for kinds that don't carry them; Validate enforces presence of the
// required ones so downstream code never checks field existence.
type Action struct {
	Type ActionType `json:"type"`
	Time float64    `json:"time"` // seconds remaining on the countdown clock

	Piece Piece `json:"piece,omitempty"` // placement, intake, drop

	// Level is the scoring tier for a placement. 0 means the scout recorded
	// no level, which is a level-1-equivalent placement (cargo ship).
	Level int `json:"level,omitempty"`

	DidSucceed     *bool `json:"didSucceed,omitempty"` // placement; optional on intake
	WasDefended    bool  `json:"wasDefended,omitempty"`
	ShotOutOfField bool  `json:"shotOutOfField,omitempty"`

	Zone Zone `json:"zone,omitempty"` // intake

	Actual *ClimbLevels `json:"actual,omitempty"` // climb

	FailedCyclesCaused float64 `json:"failedCyclesCaused,omitempty"` // endDefense
}

// IsCycleAction reports whether the action participates in game-piece cycles.
func (a Action) IsCycleAction() bool {
	return a.Type == ActionIntake || a.Type == ActionPlacement || a.Type == ActionDrop
}

// EffectiveLevel resolves the level-absence rule: no recorded level means a
// level-1-equivalent placement.
func (a Action) EffectiveLevel() int {
	if a.Level == 0 {
		return 1
	}
	return a.Level
}

// Validate checks the action's tag and the kind-specific required fields.
func (a Action) Validate() error {
	if !knownActionTypes[a.Type] {
		return fmt.Errorf("unrecognized action type %q", a.Type)
	}
	if a.Time < 0 || a.Time > MatchLength {
		return fmt.Errorf("%s action: time %.1f outside [0, %.0f]", a.Type, a.Time, MatchLength)
	}
	switch a.Type {
	case ActionPlacement:
		if !knownPieces[a.Piece] {
			return fmt.Errorf("placement at %.1f: unrecognized piece %q", a.Time, a.Piece)
		}
		if a.DidSucceed == nil {
			return fmt.Errorf("placement at %.1f: missing didSucceed", a.Time)
		}
		if a.Level < 0 || a.Level > 3 {
			return fmt.Errorf("placement at %.1f: level %d outside 1-3", a.Time, a.Level)
		}
	case ActionIntake:
		if !knownPieces[a.Piece] {
			return fmt.Errorf("intake at %.1f: unrecognized piece %q", a.Time, a.Piece)
		}
		if !knownZones[a.Zone] {
			return fmt.Errorf("intake at %.1f: unrecognized zone %q", a.Time, a.Zone)
		}
	case ActionDrop:
		if !knownPieces[a.Piece] {
			return fmt.Errorf("drop at %.1f: unrecognized piece %q", a.Time, a.Piece)
		}
	case ActionClimb:
		if a.Actual == nil {
			return fmt.Errorf("climb at %.1f: missing actual climb levels", a.Time)
		}
	case ActionEndDefense:
		if a.FailedCyclesCaused < 0 {
			return fmt.Errorf("endDefense at %.1f: negative failedCyclesCaused", a.Time)
		}
	}
	return nil
}

// TIMD is one robot's consolidated performance record for one match
// (team-in-match data). The timeline is the canonical, already-consolidated
// action log; CalculatedData is derived from it and nil until the extractor
// has run.
type TIMD struct {
	TeamNumber  int      `json:"teamNumber"`
	MatchNumber int      `json:"matchNumber"`
	Timeline    []Action `json:"timeline"`

	CalculatedData *CalculatedData `json:"calculatedData,omitempty"`
}

// Key returns the conventional <team>Q<match> record name.
func (t *TIMD) Key() string {
	return fmt.Sprintf("%dQ%d", t.TeamNumber, t.MatchNumber)
}

// Validate checks identity fields, every action, and the countdown-clock
// invariant (times never increase along the timeline).
func (t *TIMD) Validate() error {
	if t.TeamNumber <= 0 {
		return fmt.Errorf("timd: invalid team number %d", t.TeamNumber)
	}
	if t.MatchNumber <= 0 {
		return fmt.Errorf("timd %d: invalid match number %d", t.TeamNumber, t.MatchNumber)
	}
	prev := MatchLength
	for i, a := range t.Timeline {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("timd %s, action %d: %w", t.Key(), i, err)
		}
		if a.Time > prev {
			return fmt.Errorf("timd %s, action %d: time %.1f increases after %.1f", t.Key(), i, a.Time, prev)
		}
		prev = a.Time
	}
	return nil
}

// CalculatedData is the derived per-robot per-match statistics record. Field
// names follow the scouted-data convention so stored records stay compatible
// with the rest of the scouting system. Pointer fields are statistics with a
// defined null: rates with no attempts and averages with no qualifying
// cycles.
type CalculatedData struct {
	// Counts.
	CargoScored  int `json:"cargoScored"`
	PanelsScored int `json:"panelsScored"`
	CargoFouls   int `json:"cargoFouls"`
	PinningFouls int `json:"pinningFouls"`
	CargoCycles  int `json:"cargoCycles"`
	PanelCycles  int `json:"panelCycles"`
	CargoDrops   int `json:"cargoDrops"`
	PanelDrops   int `json:"panelDrops"`
	CargoFails   int `json:"cargoFails"`
	PanelFails   int `json:"panelFails"`

	// Counts sliced by period and level.
	CargoScoredSandstorm  int `json:"cargoScoredSandstorm"`
	PanelsScoredSandstorm int `json:"panelsScoredSandstorm"`
	CargoScoredTeleL1     int `json:"cargoScoredTeleL1"`
	CargoScoredTeleL2     int `json:"cargoScoredTeleL2"`
	CargoScoredTeleL3     int `json:"cargoScoredTeleL3"`
	PanelsScoredTeleL1    int `json:"panelsScoredTeleL1"`
	PanelsScoredTeleL2    int `json:"panelsScoredTeleL2"`
	PanelsScoredTeleL3    int `json:"panelsScoredTeleL3"`
	CargoScoredL1         int `json:"cargoScoredL1"`
	CargoScoredL2         int `json:"cargoScoredL2"`
	CargoScoredL3         int `json:"cargoScoredL3"`
	PanelsScoredL1        int `json:"panelsScoredL1"`
	PanelsScoredL2        int `json:"panelsScoredL2"`
	PanelsScoredL3        int `json:"panelsScoredL3"`

	// Success percentages, rounded to integers; nil when no attempts.
	PanelLoadSuccess       *int `json:"panelLoadSuccess,omitempty"`
	CargoSuccessAll        *int `json:"cargoSuccessAll,omitempty"`
	CargoSuccessDefended   *int `json:"cargoSuccessDefended,omitempty"`
	CargoSuccessUndefended *int `json:"cargoSuccessUndefended,omitempty"`
	CargoSuccessL1         *int `json:"cargoSuccessL1,omitempty"`
	CargoSuccessL2         *int `json:"cargoSuccessL2,omitempty"`
	CargoSuccessL3         *int `json:"cargoSuccessL3,omitempty"`
	PanelSuccessAll        *int `json:"panelSuccessAll,omitempty"`
	PanelSuccessDefended   *int `json:"panelSuccessDefended,omitempty"`
	PanelSuccessUndefended *int `json:"panelSuccessUndefended,omitempty"`
	PanelSuccessL1         *int `json:"panelSuccessL1,omitempty"`
	PanelSuccessL2         *int `json:"panelSuccessL2,omitempty"`
	PanelSuccessL3         *int `json:"panelSuccessL3,omitempty"`

	// Average cycle times in seconds; nil when no qualifying cycles.
	CargoCycleAll *float64 `json:"cargoCycleAll,omitempty"`
	CargoCycleL1  *float64 `json:"cargoCycleL1,omitempty"`
	CargoCycleL2  *float64 `json:"cargoCycleL2,omitempty"`
	CargoCycleL3  *float64 `json:"cargoCycleL3,omitempty"`
	PanelCycleAll *float64 `json:"panelCycleAll,omitempty"`
	PanelCycleL1  *float64 `json:"panelCycleL1,omitempty"`
	PanelCycleL2  *float64 `json:"panelCycleL2,omitempty"`
	PanelCycleL3  *float64 `json:"panelCycleL3,omitempty"`

	// Durations and flags.
	TimeIncap          float64 `json:"timeIncap"`
	TimeDefending      float64 `json:"timeDefending"`
	IsIncapEntireMatch bool    `json:"isIncapEntireMatch"`

	// Climb outcome; nil when the robot never climbed.
	TimeClimbing     *float64 `json:"timeClimbing,omitempty"`
	SelfClimbLevel   *int     `json:"selfClimbLevel,omitempty"`
	Robot1ClimbLevel *int     `json:"robot1ClimbLevel,omitempty"`
	Robot2ClimbLevel *int     `json:"robot2ClimbLevel,omitempty"`

	// Defense credited to this robot from its own endDefense events.
	TotalFailedCyclesCaused float64 `json:"totalFailedCyclesCaused"`

	// Defense-impact fields merged in by the attribution pass; nil until the
	// robot has been processed as a defender.
	CargoPointsPrevented         *float64 `json:"cargoPointsPrevented,omitempty"`
	PanelPointsPrevented         *float64 `json:"panelPointsPrevented,omitempty"`
	PointsPrevented              *float64 `json:"pointsPrevented,omitempty"`
	SuperCargoFailedCyclesCaused *float64 `json:"superCargoFailedCyclesCaused,omitempty"`
	SuperPanelFailedCyclesCaused *float64 `json:"superPanelFailedCyclesCaused,omitempty"`
	SuperFailedCyclesCaused      *float64 `json:"superFailedCyclesCaused,omitempty"`
}

// TotalScored is the successful placement count across both pieces.
func (c *CalculatedData) TotalScored() int {
	return c.CargoScored + c.PanelsScored
}

// PlayedDefense reports whether the robot spent any time defending.
func (c *CalculatedData) PlayedDefense() bool {
	return c.TimeDefending > 0
}

// Drops returns the drop count for the given piece.
func (c *CalculatedData) Drops(p Piece) int {
	if p == PieceCargo {
		return c.CargoDrops
	}
	return c.PanelDrops
}

// Fails returns the failed-placement count for the given piece.
func (c *CalculatedData) Fails(p Piece) int {
	if p == PieceCargo {
		return c.CargoFails
	}
	return c.PanelFails
}

// Cycles returns the started-cycle count for the given piece.
func (c *CalculatedData) Cycles(p Piece) int {
	if p == PieceCargo {
		return c.CargoCycles
	}
	return c.PanelCycles
}

// CycleTime returns the average cycle time for the given piece, nil when the
// robot completed no cycles of that piece.
func (c *CalculatedData) CycleTime(p Piece) *float64 {
	if p == PieceCargo {
		return c.CargoCycleAll
	}
	return c.PanelCycleAll
}

// Alliance is one side of a match.
type Alliance string

const (
	AllianceRed  Alliance = "red"
	AllianceBlue Alliance = "blue"
)

// MatchSchedule is the roster for one match: the team numbers per alliance.
type MatchSchedule struct {
	MatchNumber int   `json:"matchNumber"`
	RedTeams    []int `json:"redTeams"`
	BlueTeams   []int `json:"blueTeams"`
}

// AllianceOf reports which alliance a team plays on in this match.
func (m *MatchSchedule) AllianceOf(team int) (Alliance, bool) {
	for _, t := range m.RedTeams {
		if t == team {
			return AllianceRed, true
		}
	}
	for _, t := range m.BlueTeams {
		if t == team {
			return AllianceBlue, true
		}
	}
	return "", false
}

// Opponents returns the roster of the alliance opposing the given one.
func (m *MatchSchedule) Opponents(a Alliance) []int {
	if a == AllianceRed {
		return m.BlueTeams
	}
	return m.RedTeams
}

// Validate checks the roster shape.
func (m *MatchSchedule) Validate() error {
	if m.MatchNumber <= 0 {
		return fmt.Errorf("schedule: invalid match number %d", m.MatchNumber)
	}
	if len(m.RedTeams) == 0 || len(m.BlueTeams) == 0 {
		return fmt.Errorf("schedule for match %d: empty alliance roster", m.MatchNumber)
	}
	return nil
}

// PieceBaseline is a team's season-to-date averages for one game-piece kind.
type PieceBaseline struct {
	AvgDrops     float64  `json:"avgDrops"`
	AvgFails     float64  `json:"avgFails"`
	AvgCycles    float64  `json:"avgCycles"`
	AvgCycleTime *float64 `json:"avgCycleTime,omitempty"` // nil with no completed cycles on record
}

// DropRate is baseline drops per cycle; nil when the team has no cycles on
// record (a zero here would misread as "never drops").
func (b PieceBaseline) DropRate() *float64 {
	if b.AvgCycles == 0 {
		return nil
	}
	r := b.AvgDrops / b.AvgCycles
	return &r
}

// FailRate is baseline failed placements per cycle; nil when the team has no
// cycles on record.
func (b PieceBaseline) FailRate() *float64 {
	if b.AvgCycles == 0 {
		return nil
	}
	r := b.AvgFails / b.AvgCycles
	return &r
}

// TeamBaseline is a team's season aggregate, the defense-free counterfactual
// used by the attribution engine.
type TeamBaseline struct {
	TeamNumber int           `json:"teamNumber"`
	Matches    int           `json:"matches"`
	Cargo      PieceBaseline `json:"cargo"`
	Panel      PieceBaseline `json:"panel"`
}

// ForPiece returns the per-piece slice of the baseline.
func (b *TeamBaseline) ForPiece(p Piece) PieceBaseline {
	if p == PieceCargo {
		return b.Cargo
	}
	return b.Panel
}

// DefenseImpact is one defending robot's attributed impact for one match.
type DefenseImpact struct {
	TeamNumber  int `json:"teamNumber"`
	MatchNumber int `json:"matchNumber"`

	CargoPointsPrevented    float64 `json:"cargoPointsPrevented"`
	PanelPointsPrevented    float64 `json:"panelPointsPrevented"`
	CargoFailedCyclesCaused float64 `json:"cargoFailedCyclesCaused"`
	PanelFailedCyclesCaused float64 `json:"panelFailedCyclesCaused"`
}

// ApplyDefenseImpact merges a defense-attribution result onto the record,
// overwriting the defense-impact fields and leaving every other field
// untouched.
func (c *CalculatedData) ApplyDefenseImpact(d DefenseImpact) {
	cargoPts := d.CargoPointsPrevented
	panelPts := d.PanelPointsPrevented
	totalPts := d.PointsPrevented()
	cargoFc := d.CargoFailedCyclesCaused
	panelFc := d.PanelFailedCyclesCaused
	totalFc := d.FailedCyclesCaused()

	c.CargoPointsPrevented = &cargoPts
	c.PanelPointsPrevented = &panelPts
	c.PointsPrevented = &totalPts
	c.SuperCargoFailedCyclesCaused = &cargoFc
	c.SuperPanelFailedCyclesCaused = &panelFc
	c.SuperFailedCyclesCaused = &totalFc
}

// PointsPrevented is the total scoring value denied across both pieces.
func (d DefenseImpact) PointsPrevented() float64 {
	return d.CargoPointsPrevented + d.PanelPointsPrevented
}

// FailedCyclesCaused is the total failed cycles caused across both pieces.
func (d DefenseImpact) FailedCyclesCaused() float64 {
	return d.CargoFailedCyclesCaused + d.PanelFailedCyclesCaused
}
