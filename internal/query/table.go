// Package query answers point lookups over a loaded season snapshot.
//
// Misses are not errors here: a player missing from a week is a waiver pickup
// or a bye, so lookups return a sentinel and log a warning instead.
package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/omarshaarawi/ffdata/internal/season"
)

type Table struct {
	records []models.WeekRecord
	season  season.Season
	logger  *logging.Logger
}

// NewTable copies records; the table is never mutated afterwards.
func NewTable(records []models.WeekRecord, s season.Season, logger *logging.Logger) *Table {
	if logger == nil {
		logger = logging.Default()
	}
	rows := make([]models.WeekRecord, len(records))
	copy(rows, records)
	return &Table{records: rows, season: s, logger: logger}
}

func (t *Table) Len() int { return len(t.records) }

func (t *Table) Season() season.Season { return t.season }

func (t *Table) Records() []models.WeekRecord {
	rows := make([]models.WeekRecord, len(t.records))
	copy(rows, t.records)
	return rows
}

func (t *Table) row(player string, week int) (models.WeekRecord, bool) {
	for _, r := range t.records {
		if r.Week == week && r.Player == player {
			return r, true
		}
	}
	return models.WeekRecord{}, false
}

// Rank returns the player's 1-based rank among players at the same position
// that week. Ranking is over distinct actual scores, so ties share a rank.
// With onlyStarters, bench and IR rows are excluded first.
func (t *Table) Rank(player string, week int, onlyStarters bool) (int, bool) {
	var weekRows []models.WeekRecord
	for _, r := range t.records {
		if r.Week != week {
			continue
		}
		if onlyStarters && !r.Position.IsStarting() {
			continue
		}
		weekRows = append(weekRows, r)
	}

	var target *models.WeekRecord
	for i := range weekRows {
		if weekRows[i].Player == player {
			target = &weekRows[i]
			break
		}
	}
	if target == nil {
		t.logger.Warn("Player not in dataset for week", "player", player, "week", week, "only_starters", onlyStarters)
		return 0, false
	}

	distinct := make(map[float64]struct{})
	for _, r := range weekRows {
		if r.Position == target.Position {
			distinct[r.ActualOrZero()] = struct{}{}
		}
	}
	scores := make([]float64, 0, len(distinct))
	for s := range distinct {
		scores = append(scores, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	want := target.ActualOrZero()
	for i, s := range scores {
		if s == want {
			return i + 1, true
		}
	}
	return 0, false
}

// Score returns NaN when the player has no row for week, and 0 when the row
// exists without a value.
func (t *Table) Score(player string, week int, projected bool) float64 {
	r, ok := t.row(player, week)
	if !ok {
		t.logger.Warn("No player score recorded", "player", player, "week", week)
		return math.NaN()
	}
	v := r.Actual
	if projected {
		v = r.Projected
	}
	if v == nil {
		return 0
	}
	return *v
}

func (t *Table) WasStarted(player string, week int) bool {
	r, ok := t.row(player, week)
	return ok && r.Position.IsStarting()
}

func (t *Table) WasBenched(player string, week int) bool {
	r, ok := t.row(player, week)
	return ok && !r.Position.IsStarting()
}

// WasOnWaivers reports a player absent from every roster that week.
func (t *Table) WasOnWaivers(player string, week int) bool {
	_, ok := t.row(player, week)
	return !ok
}

// TeamID returns -1 for an unknown nickname.
func (t *Table) TeamID(nickname string) int {
	id, ok := t.season.TeamID(nickname)
	if !ok {
		t.logger.Warn("Nickname not recognized", "nickname", nickname, "season", t.season.Year, "known", t.season.Nicknames())
		return -1
	}
	return id
}

func (t *Table) TeamNickname(teamID int) (string, error) {
	return t.season.Nickname(teamID)
}

func (t *Table) Nicknames() map[string]int {
	return t.season.Nicknames()
}

// ResolveTeam accepts a nickname or a numeric team id.
func (t *Table) ResolveTeam(team string) int {
	if id, err := strconv.Atoi(strings.TrimSpace(team)); err == nil {
		return id
	}
	return t.TeamID(team)
}

// TeamStarters lists the players a team started in week, optionally only at pos.
func (t *Table) TeamStarters(teamID, week int, pos models.Position) []string {
	var starters []string
	for _, r := range t.records {
		if r.Week != week || r.TeamID != teamID || !r.Position.IsStarting() {
			continue
		}
		if pos != "" && r.Position != pos {
			continue
		}
		starters = append(starters, r.Player)
	}

	if pos != "" && len(starters) == 0 {
		t.logger.Warn("Position not found in starters", "position", pos, "team", teamID, "week", week)
		return []string{}
	}
	return starters
}

// NumPlayersStarted counts distinct players the team started across the whole
// season, optionally only at pos.
func (t *Table) NumPlayersStarted(teamID int, pos models.Position) int {
	seen := make(map[string]struct{})
	for _, r := range t.records {
		if r.TeamID != teamID || !r.Position.IsStarting() {
			continue
		}
		if pos != "" && r.Position != pos {
			continue
		}
		seen[r.Player] = struct{}{}
	}
	return len(seen)
}

// NumPositionSlots returns the season's starting slot count for pos, or the
// lineup total when pos is empty. Unknown positions return -1.
func (t *Table) NumPositionSlots(pos models.Position) int {
	n, ok := t.season.SlotCount(string(pos))
	if !ok {
		t.logger.Warn("Position not recognized", "position", pos, "season", t.season.Year)
		return -1
	}
	return n
}

// Players lists every distinct player name in the table, sorted.
func (t *Table) Players() []string {
	seen := make(map[string]struct{})
	for _, r := range t.records {
		seen[r.Player] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) MatchPlayer(name string) (string, bool) {
	return BestMatch(name, t.Players())
}

// LookupPlayer returns the table's spelling of name when the two differ only
// in case or accents. Any other name is returned as typed, so a player absent
// from the table stays absent, and the closest fuzzy candidate comes back as
// a suggestion only.
func (t *Table) LookupPlayer(name string) (player, suggestion string) {
	players := t.Players()
	target := fold(name)
	for _, p := range players {
		if fold(p) == target {
			return p, ""
		}
	}
	if match, ok := BestMatch(name, players); ok {
		return name, match
	}
	return name, ""
}
