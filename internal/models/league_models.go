package models

import "strings"

type Position string

const (
	PositionQB    Position = "QB"
	PositionRB    Position = "RB"
	PositionWR    Position = "WR"
	PositionTE    Position = "TE"
	PositionDef   Position = "Def"
	PositionK     Position = "K"
	PositionBench Position = "Bench"
	PositionIR    Position = "IR"
	PositionFlex  Position = "Flex"
)

// IsStarting reports whether the slot counts toward the weekly lineup.
func (p Position) IsStarting() bool {
	return p != PositionBench && p != PositionIR
}

// StatusNA is stored when the payload carries no injury status.
const StatusNA = "NA"

// WeekRecord is one row of a season snapshot.
type WeekRecord struct {
	Week      int
	TeamID    int
	Player    string
	Slot      int
	Position  Position
	Status    string
	Projected *float64
	Actual    *float64
}

// ActualOrZero treats a missing actual score as a bye week.
func (r WeekRecord) ActualOrZero() float64 {
	if r.Actual == nil {
		return 0
	}
	return *r.Actual
}

// PlayerCard is the subset of the kona_playercard view the CLI reports.
type PlayerCard struct {
	ID       int
	FullName string
	Position string
	ProTeam  string
	OnTeamID int
}

var positionsByName = map[string]Position{
	"qb": PositionQB, "rb": PositionRB, "wr": PositionWR, "te": PositionTE,
	"def": PositionDef, "d/st": PositionDef, "dst": PositionDef, "k": PositionK,
	"bench": PositionBench, "ir": PositionIR, "flex": PositionFlex,
}

// ParsePosition accepts position labels case-insensitively, including the
// ESPN "D/ST" spelling for team defenses.
func ParsePosition(s string) (Position, bool) {
	pos, ok := positionsByName[strings.ToLower(strings.TrimSpace(s))]
	return pos, ok
}
