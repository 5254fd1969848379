package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(v float64) *float64 { return &v }

func sampleRecords() []models.WeekRecord {
	return []models.WeekRecord{
		{Week: 1, TeamID: 1, Player: "Josh Allen", Slot: 0, Position: models.PositionQB, Status: "NA", Projected: pts(18.2), Actual: pts(24.5)},
		{Week: 1, TeamID: 2, Player: "Patrick Mahomes", Slot: 0, Position: models.PositionQB, Status: "ACTIVE", Projected: pts(19.0), Actual: pts(20.1)},
		{Week: 1, TeamID: 2, Player: "Ja'Marr Chase, Jr.", Slot: 20, Position: models.PositionBench, Status: "QUESTIONABLE", Projected: pts(0.1 + 0.2), Actual: nil},
		{Week: 2, TeamID: 1, Player: "Bills D/ST", Slot: 16, Position: models.PositionDef, Status: "NA", Projected: nil, Actual: pts(-2)},
	}
}

func newTestStore(t *testing.T, format string, day string) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), format, nil)
	require.NoError(t, err)
	s.now = func() time.Time {
		d, err := time.Parse(dateLayout, day)
		require.NoError(t, err)
		return d
	}
	return s
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, format := range []string{"csv", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			s := newTestStore(t, format, "2021-12-01")

			path, err := s.Save(sampleRecords(), 2021)
			require.NoError(t, err)
			assert.Equal(t, "FF2021_playerdata_pulled_2021-12-01."+format, filepath.Base(path))

			records, loaded, err := s.Load(2021)
			require.NoError(t, err)
			assert.Equal(t, path, loaded)
			assert.Equal(t, sampleRecords(), records)
		})
	}
}

func TestSave_NeverOverwrites(t *testing.T) {
	s := newTestStore(t, "csv", "2021-12-01")

	first, err := s.Save(sampleRecords()[:1], 2021)
	require.NoError(t, err)
	second, err := s.Save(sampleRecords(), 2021)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "FF2021_playerdata_pulled_2021-12-01_2.csv", filepath.Base(second))

	records, loaded, err := s.Load(2021)
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
	assert.Len(t, records, 4)
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t, "csv", "2021-12-01")

	_, _, err := s.Load(2021)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "pull it first")
}

func TestLatest_ByEmbeddedDate(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "csv", nil)
	require.NoError(t, err)

	names := []string{
		"FF2021_playerdata_pulled_2021-12-01.csv",
		"FF2021_playerdata_pulled_2022-01-21.csv",
		"FF2021_playerdata_pulled_2021-09-30_3.csv",
		"FF2020_playerdata_pulled_2022-02-01.csv",
		"notes_2021.txt",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	// An older pull touched last must not win.
	older := filepath.Join(dir, "FF2021_playerdata_pulled_2021-12-01.csv")
	require.NoError(t, os.Chtimes(older, time.Now().Add(time.Hour), time.Now().Add(time.Hour)))

	latest, err := s.Latest(2021)
	require.NoError(t, err)
	assert.Equal(t, "FF2021_playerdata_pulled_2022-01-21.csv", filepath.Base(latest))

	latest, err = s.Latest(2020)
	require.NoError(t, err)
	assert.Equal(t, "FF2020_playerdata_pulled_2022-02-01.csv", filepath.Base(latest))
}

func TestLoad_PandasIndexColumn(t *testing.T) {
	dir := t.TempDir()
	raw := ",Week,Team,Player,Slot,Pos,Status,Proj,Actual\n" +
		"0,1,1,Josh Allen,0,QB,ACTIVE,18.2,24.5\n" +
		"1,1,8,Jonathan Taylor,23,Flex,NA,15.0,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FF2021_playerdata_pulled_2021-12-01.csv"), []byte(raw), 0o644))

	s, err := NewStore(dir, "csv", nil)
	require.NoError(t, err)

	records, _, err := s.Load(2021)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jonathan Taylor", records[1].Player)
	assert.Equal(t, models.PositionFlex, records[1].Position)
	assert.Equal(t, 15.0, *records[1].Projected)
	assert.Nil(t, records[1].Actual)
}

func TestLoad_RejectsUnknownPosition(t *testing.T) {
	dir := t.TempDir()
	raw := "Week,Team,Player,Slot,Pos,Status,Proj,Actual\n1,1,Someone,5,LB,NA,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FF2021_playerdata_pulled_2021-12-01.csv"), []byte(raw), 0o644))

	s, err := NewStore(dir, "csv", nil)
	require.NoError(t, err)

	_, _, err = s.Load(2021)
	require.ErrorContains(t, err, "unknown position")
}

func TestNewStore_UnsupportedFormat(t *testing.T) {
	_, err := NewStore(t.TempDir(), "parquet", nil)
	require.Error(t, err)
}

func TestSaveLoad_KeepsNameWhitespace(t *testing.T) {
	for _, format := range []string{"csv", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			s := newTestStore(t, format, "2021-12-01")
			in := []models.WeekRecord{
				{Week: 3, TeamID: 4, Player: "Player ", Slot: 2, Position: models.PositionRB, Status: "NA", Projected: pts(5), Actual: pts(6)},
				{Week: 3, TeamID: 4, Player: " Leading Space", Slot: 4, Position: models.PositionWR, Status: "NA", Projected: pts(7), Actual: pts(8)},
			}

			_, err := s.Save(in, 2021)
			require.NoError(t, err)

			records, _, err := s.Load(2021)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "Player ", records[0].Player)
			assert.Equal(t, " Leading Space", records[1].Player)
		})
	}
}

func TestLoad_TrimsNumericCells(t *testing.T) {
	dir := t.TempDir()
	raw := "Week,Team,Player,Slot,Pos,Status,Proj,Actual\n 1 , 2 ,Josh Allen, 0 , QB ,NA, 18.2 , 24.5 \n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FF2021_playerdata_pulled_2021-12-01.csv"), []byte(raw), 0o644))

	s, err := NewStore(dir, "csv", nil)
	require.NoError(t, err)

	records, _, err := s.Load(2021)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].TeamID)
	assert.Equal(t, models.PositionQB, records[0].Position)
	assert.Equal(t, 24.5, *records[0].Actual)
}
