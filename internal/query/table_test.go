package query

import (
	"math"
	"testing"

	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/omarshaarawi/ffdata/internal/season"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func pts(v float64) *float64 { return &v }

func rec(week, team int, player string, pos models.Position, proj, actual *float64) models.WeekRecord {
	return models.WeekRecord{Week: week, TeamID: team, Player: player, Position: pos, Status: models.StatusNA, Projected: proj, Actual: actual}
}

var testSeason = season.Season{
	Year:       2021,
	Weeks:      14,
	Teams:      map[string]int{"Tyler": 1, "Mitch": 2, "Brian": 3},
	Slots:      map[string]int{"QB": 1, "RB": 2, "WR": 3, "TE": 1, "K": 1, "Def": 1},
	TotalSlots: 10,
}

func newTestTable(t *testing.T, records []models.WeekRecord) (*Table, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	return NewTable(records, testSeason, logging.FromZap(zap.New(core))), logs
}

func leagueRecords() []models.WeekRecord {
	return []models.WeekRecord{
		rec(1, 1, "Josh Allen", models.PositionQB, pts(18.2), pts(24.5)),
		rec(1, 2, "Patrick Mahomes", models.PositionQB, pts(19.0), pts(20.1)),
		rec(1, 3, "Tom Brady", models.PositionQB, pts(17.5), pts(24.5)),
		rec(1, 3, "Kyler Murray", models.PositionBench, pts(20.0), pts(31.0)),
		rec(1, 1, "Derrick Henry", models.PositionRB, pts(17.0), pts(12.0)),
		rec(1, 1, "Nick Chubb", models.PositionRB, pts(14.0), pts(9.0)),
		rec(1, 1, "Jonathan Taylor", models.PositionFlex, pts(15.0), pts(22.0)),
		rec(1, 1, "Christian McCaffrey", models.PositionIR, nil, nil),
		rec(1, 2, "Davante Adams", models.PositionWR, pts(16.0), pts(11.0)),
		rec(1, 2, "Tyreek Hill", models.PositionWR, pts(15.0), pts(7.5)),
		rec(2, 1, "Josh Allen", models.PositionQB, pts(21.0), nil),
		rec(2, 1, "Derrick Henry", models.PositionRB, pts(17.0), pts(30.0)),
		rec(2, 1, "Nick Chubb", models.PositionBench, pts(14.0), pts(4.0)),
		rec(2, 1, "Najee Harris", models.PositionRB, pts(13.0), pts(15.0)),
		rec(2, 2, "Davante Adams", models.PositionWR, pts(16.0), pts(19.0)),
	}
}

func TestRank_Example(t *testing.T) {
	tbl, _ := newTestTable(t, []models.WeekRecord{
		rec(1, 1, "Josh Allen", models.PositionQB, pts(18.2), pts(24.5)),
		rec(1, 2, "Patrick Mahomes", models.PositionQB, pts(19.0), pts(20.1)),
	})

	rank, ok := tbl.Rank("Josh Allen", 1, true)
	require.True(t, ok)
	assert.Equal(t, 1, rank)

	rank, ok = tbl.Rank("Patrick Mahomes", 1, true)
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	assert.Equal(t, 18.2, tbl.Score("Josh Allen", 1, true))
}

func TestRank_TiesShareRank(t *testing.T) {
	tbl, _ := newTestTable(t, leagueRecords())

	allen, _ := tbl.Rank("Josh Allen", 1, true)
	brady, _ := tbl.Rank("Tom Brady", 1, true)
	mahomes, _ := tbl.Rank("Patrick Mahomes", 1, true)

	assert.Equal(t, 1, allen)
	assert.Equal(t, 1, brady)
	assert.Equal(t, 2, mahomes, "rank is over distinct scores")
}

func TestRank_Monotonic(t *testing.T) {
	records := leagueRecords()
	tbl, _ := newTestTable(t, records)

	for _, a := range records {
		for _, b := range records {
			if a.Week != b.Week || a.Position != b.Position || !a.Position.IsStarting() {
				continue
			}
			ra, okA := tbl.Rank(a.Player, a.Week, true)
			rb, okB := tbl.Rank(b.Player, b.Week, true)
			require.True(t, okA)
			require.True(t, okB)
			switch {
			case a.ActualOrZero() > b.ActualOrZero():
				assert.LessOrEqual(t, ra, rb, "%s vs %s", a.Player, b.Player)
			case a.ActualOrZero() == b.ActualOrZero():
				assert.Equal(t, ra, rb, "%s vs %s", a.Player, b.Player)
			}
		}
	}
}

func TestRank_OnlyStarters(t *testing.T) {
	tbl, logs := newTestTable(t, leagueRecords())

	_, ok := tbl.Rank("Kyler Murray", 1, true)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("Player not in dataset for week").Len())

	// Without the filter the benched player ranks among the bench rows.
	rank, ok := tbl.Rank("Kyler Murray", 1, false)
	require.True(t, ok)
	assert.Equal(t, 1, rank)

	// IR rows are excluded along with the bench.
	_, ok = tbl.Rank("Christian McCaffrey", 1, true)
	assert.False(t, ok)
}

func TestRank_ByeCountsAsZero(t *testing.T) {
	tbl, _ := newTestTable(t, []models.WeekRecord{
		rec(3, 1, "A", models.PositionTE, nil, nil),
		rec(3, 2, "B", models.PositionTE, nil, pts(-1)),
		rec(3, 3, "C", models.PositionTE, nil, pts(5)),
	})

	a, _ := tbl.Rank("A", 3, true)
	b, _ := tbl.Rank("B", 3, true)
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)
}

func TestScore(t *testing.T) {
	tbl, logs := newTestTable(t, leagueRecords())

	assert.Equal(t, 24.5, tbl.Score("Josh Allen", 1, false))
	assert.Equal(t, 21.0, tbl.Score("Josh Allen", 2, true))
	assert.Equal(t, 0.0, tbl.Score("Josh Allen", 2, false), "bye week scores zero")
	assert.Equal(t, 0.0, tbl.Score("Christian McCaffrey", 1, true))

	assert.True(t, math.IsNaN(tbl.Score("Josh Allen", 5, false)))
	assert.Equal(t, 1, logs.FilterMessage("No player score recorded").Len())
}

func TestStatus_ExactlyOne(t *testing.T) {
	tbl, _ := newTestTable(t, leagueRecords())

	players := append(tbl.Players(), "Free Agent")
	for _, p := range players {
		for week := 1; week <= 5; week++ {
			n := 0
			for _, v := range []bool{tbl.WasStarted(p, week), tbl.WasBenched(p, week), tbl.WasOnWaivers(p, week)} {
				if v {
					n++
				}
			}
			assert.Equal(t, 1, n, "%s week %d", p, week)
		}
	}

	assert.True(t, tbl.WasStarted("Jonathan Taylor", 1))
	assert.True(t, tbl.WasBenched("Nick Chubb", 2))
	assert.True(t, tbl.WasBenched("Christian McCaffrey", 1))
	assert.True(t, tbl.WasOnWaivers("Tom Brady", 2))
	assert.True(t, tbl.WasOnWaivers("Josh Allen", 5))
}

func TestTeamLookups(t *testing.T) {
	tbl, logs := newTestTable(t, nil)

	assert.Equal(t, 2, tbl.TeamID("Mitch"))
	assert.Equal(t, -1, tbl.TeamID("Nobody"))
	assert.Equal(t, 1, logs.FilterMessage("Nickname not recognized").Len())

	name, err := tbl.TeamNickname(3)
	require.NoError(t, err)
	assert.Equal(t, "Brian", name)

	_, err = tbl.TeamNickname(42)
	assert.ErrorIs(t, err, season.ErrUnknownTeam)

	assert.Equal(t, 3, tbl.ResolveTeam("3"))
	assert.Equal(t, 1, tbl.ResolveTeam("Tyler"))
	assert.Len(t, tbl.Nicknames(), 3)
}

func TestTeamStarters(t *testing.T) {
	tbl, logs := newTestTable(t, leagueRecords())

	assert.Equal(t,
		[]string{"Josh Allen", "Derrick Henry", "Nick Chubb", "Jonathan Taylor"},
		tbl.TeamStarters(1, 1, ""))
	assert.Equal(t, []string{"Derrick Henry", "Najee Harris"}, tbl.TeamStarters(1, 2, models.PositionRB))

	got := tbl.TeamStarters(1, 1, models.PositionK)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("Position not found in starters").Len())
}

func TestNumPlayersStarted(t *testing.T) {
	tbl, _ := newTestTable(t, leagueRecords())

	// Allen, Henry, Chubb (week 1 only), Taylor, Harris.
	assert.Equal(t, 5, tbl.NumPlayersStarted(1, ""))
	assert.Equal(t, 3, tbl.NumPlayersStarted(1, models.PositionRB))
	assert.Equal(t, 0, tbl.NumPlayersStarted(1, models.PositionIR))
	assert.Equal(t, 2, tbl.NumPlayersStarted(2, models.PositionWR))
}

func TestNumPositionSlots(t *testing.T) {
	tbl, logs := newTestTable(t, nil)

	assert.Equal(t, 10, tbl.NumPositionSlots(""))
	assert.Equal(t, 2, tbl.NumPositionSlots(models.PositionRB))
	assert.Equal(t, -1, tbl.NumPositionSlots(models.PositionFlex))
	assert.Equal(t, 1, logs.Len())
}

func TestNewTable_CopiesRecords(t *testing.T) {
	records := leagueRecords()
	tbl, _ := newTestTable(t, records)
	records[0].Player = "Changed"

	assert.True(t, tbl.WasStarted("Josh Allen", 1))
}
