package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/omarshaarawi/ffdata/internal/query"
	"github.com/omarshaarawi/ffdata/internal/repository/memory"
	"github.com/omarshaarawi/ffdata/internal/season"
)

// FantasyAPI is the remote side of a season pull.
type FantasyAPI interface {
	WeekRecords(ctx context.Context, week int) ([]models.WeekRecord, error)
	PlayerCard(ctx context.Context, name string) (models.PlayerCard, error)
}

type SnapshotStore interface {
	Save(records []models.WeekRecord, season int) (string, error)
	Load(season int) ([]models.WeekRecord, string, error)
}

type FantasyService struct {
	api    FantasyAPI
	store  SnapshotStore
	repo   *memory.Repository
	season season.Season
	logger *logging.Logger
}

func NewFantasyService(api FantasyAPI, store SnapshotStore, repo *memory.Repository, s season.Season, logger *logging.Logger) *FantasyService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FantasyService{api: api, store: store, repo: repo, season: s, logger: logger}
}

func (s *FantasyService) Season() season.Season { return s.season }

// PullSeason fetches every regular-season week in order and saves one
// snapshot. Any failing week aborts the pull before anything is written.
func (s *FantasyService) PullSeason(ctx context.Context) (string, error) {
	var records []models.WeekRecord
	for week := 1; week <= s.season.Weeks; week++ {
		weekRecords, err := s.api.WeekRecords(ctx, week)
		if err != nil {
			return "", errors.Wrapf(err, "pulling season %d", s.season.Year)
		}
		records = append(records, weekRecords...)
		s.logger.Info("Week complete", "season", s.season.Year, "week", week, "rows", len(weekRecords))
	}

	path, err := s.store.Save(records, s.season.Year)
	if err != nil {
		return "", err
	}

	s.repo.SaveTable(query.NewTable(records, s.season, s.logger), path)
	return path, nil
}

// LoadSnapshot reads the latest snapshot from disk into the repository.
func (s *FantasyService) LoadSnapshot() (*query.Table, error) {
	records, path, err := s.store.Load(s.season.Year)
	if err != nil {
		return nil, err
	}
	table := query.NewTable(records, s.season, s.logger)
	s.repo.SaveTable(table, path)
	return table, nil
}

// Table returns the loaded table, loading it on first use.
func (s *FantasyService) Table() (*query.Table, error) {
	if loaded := s.repo.GetTable(); loaded != nil {
		return loaded.Table, nil
	}
	return s.LoadSnapshot()
}

// resolvePlayer never substitutes a different player: a near miss is
// answered for the name as typed, with the candidate offered as a hint.
func (s *FantasyService) resolvePlayer(tbl *query.Table, name string) (string, string) {
	player, suggestion := tbl.LookupPlayer(name)
	if suggestion == "" {
		return player, ""
	}
	return player, fmt.Sprintf("\nDid you mean *%s*?", suggestion)
}

func (s *FantasyService) resolveTeam(tbl *query.Table, team string) (int, string, error) {
	id := tbl.ResolveTeam(team)
	if id < 0 {
		return 0, "", errors.Newf("team not found: %s", team)
	}
	nickname, err := tbl.TeamNickname(id)
	if err != nil {
		nickname = fmt.Sprintf("Team %d", id)
	}
	return id, nickname, nil
}

func (s *FantasyService) GetRank(player string, week int, onlyStarters bool) (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	player, hint := s.resolvePlayer(tbl, player)

	rank, ok := tbl.Rank(player, week, onlyStarters)
	if !ok {
		return fmt.Sprintf("🔍 *%s* has no ranked row for week %d.%s", player, week, hint), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📈 *%s* - Week %d\n", player, week))
	sb.WriteString(fmt.Sprintf("Positional rank: %d", rank))
	if onlyStarters {
		sb.WriteString(" (starters only)")
	}
	sb.WriteString(fmt.Sprintf("\nScore: %.2f pts", tbl.Score(player, week, false)))
	return sb.String(), nil
}

func (s *FantasyService) GetScore(player string, week int) (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	player, hint := s.resolvePlayer(tbl, player)

	actual := tbl.Score(player, week, false)
	if math.IsNaN(actual) {
		return fmt.Sprintf("🔍 No score recorded for *%s* in week %d.%s", player, week, hint), nil
	}
	projected := tbl.Score(player, week, true)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏈 *%s* - Week %d\n", player, week))
	sb.WriteString(fmt.Sprintf("Actual: %.2f pts\n", actual))
	sb.WriteString(fmt.Sprintf("Projected: %.2f pts", projected))
	return sb.String(), nil
}

func (s *FantasyService) GetStatus(player string, week int) (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	player, hint := s.resolvePlayer(tbl, player)

	status := "On waivers"
	switch {
	case tbl.WasStarted(player, week):
		status = "Started"
	case tbl.WasBenched(player, week):
		status = "Benched"
	}
	return fmt.Sprintf("*%s* - Week %d: %s%s", player, week, status, hint), nil
}

func (s *FantasyService) GetStarters(team string, week int, pos models.Position) (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	id, nickname, err := s.resolveTeam(tbl, team)
	if err != nil {
		return "", err
	}

	starters := tbl.TeamStarters(id, week, pos)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *%s's Week %d Starters*", nickname, week))
	if pos != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", pos))
	}
	sb.WriteString("\n\n")
	if len(starters) == 0 {
		sb.WriteString("No starters found.")
		return sb.String(), nil
	}
	for _, p := range starters {
		sb.WriteString(fmt.Sprintf("▫️ %s - %.2f pts\n", p, tbl.Score(p, week, false)))
	}
	return sb.String(), nil
}

func (s *FantasyService) GetNumStarted(team string, pos models.Position) (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	id, nickname, err := s.resolveTeam(tbl, team)
	if err != nil {
		return "", err
	}

	n := tbl.NumPlayersStarted(id, pos)
	label := "players"
	if pos != "" {
		label = string(pos) + "s"
	}
	return fmt.Sprintf("*%s* started %d different %s this season.", nickname, n, label), nil
}

func (s *FantasyService) GetTeams() (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	nicknames := tbl.Nicknames()

	names := make([]string, 0, len(nicknames))
	for name := range nicknames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return nicknames[names[i]] < nicknames[names[j]] })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%d Teams*\n\n", s.season.Year))
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("%d. %s\n", nicknames[name], name))
	}
	return sb.String(), nil
}

func (s *FantasyService) GetSlots(pos models.Position) (string, error) {
	tbl, err := s.Table()
	if err != nil {
		return "", err
	}
	n := tbl.NumPositionSlots(pos)
	if n < 0 {
		return fmt.Sprintf("Position %s not recognized.", pos), nil
	}
	if pos == "" {
		return fmt.Sprintf("%d starting slots in %d.", n, s.season.Year), nil
	}
	return fmt.Sprintf("%d %s slot(s) in %d.", n, pos, s.season.Year), nil
}

func (s *FantasyService) GetPlayerCard(ctx context.Context, name string) (string, error) {
	card, err := s.api.PlayerCard(ctx, name)
	if err != nil {
		return "", errors.Wrap(err, "looking up player")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* (%s - %s)\n", card.FullName, card.Position, card.ProTeam))
	if card.OnTeamID != 0 {
		nickname, err := s.season.Nickname(card.OnTeamID)
		if err != nil {
			nickname = fmt.Sprintf("Team %d", card.OnTeamID)
		}
		sb.WriteString(fmt.Sprintf("Rostered by %s", nickname))
	} else {
		sb.WriteString("Free Agent")
	}
	return sb.String(), nil
}
