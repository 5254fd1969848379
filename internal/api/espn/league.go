package espn

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/models"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) leagueEndpoint() string {
	return fmt.Sprintf("/seasons/%s/segments/0/leagues/%s", a.client.Config.Year, a.client.Config.LeagueID)
}

// FetchWeek pulls every team's roster and per-period stats for one scoring period.
func (a *API) FetchWeek(ctx context.Context, week int) (*models.LeagueResponse, error) {
	var leagueResponse models.LeagueResponse
	params := map[string]string{
		"view":            "mMatchup,mMatchupScore",
		"scoringPeriodId": strconv.Itoa(week),
	}

	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &leagueResponse); err != nil {
		return nil, errors.Wrapf(err, "fetching week %d", week)
	}

	return &leagueResponse, nil
}

// PlayerIndex lists the active player pool for the season.
func (a *API) PlayerIndex(ctx context.Context) ([]models.PlayerInfo, error) {
	var players []models.PlayerInfo
	endpoint := fmt.Sprintf("/seasons/%s/players", a.client.Config.Year)
	params := map[string]string{
		"view": "players_wl",
	}

	filters := map[string]any{
		"filterActive": map[string]any{"value": true},
	}
	headers, err := filterHeader(filters)
	if err != nil {
		return nil, err
	}

	if err := a.client.Get(ctx, endpoint, params, headers, &players); err != nil {
		return nil, errors.Wrap(err, "fetching player index")
	}
	return players, nil
}

func (a *API) PlayerCard(ctx context.Context, playerID int) (models.PlayerCard, error) {
	var cardResponse models.PlayerCardResponse
	year := a.client.Config.Year
	params := map[string]string{
		"view": "kona_playercard",
	}

	filters := map[string]any{
		"players": map[string]any{
			"filterIds": map[string]any{
				"value": []int{playerID},
			},
			"filterStatsForTopScoringPeriodIds": map[string]any{
				"value":           16,
				"additionalValue": []string{"00" + year, "10" + year},
			},
		},
	}
	headers, err := filterHeader(filters)
	if err != nil {
		return models.PlayerCard{}, err
	}

	if err := a.client.Get(ctx, a.leagueEndpoint(), params, headers, &cardResponse); err != nil {
		return models.PlayerCard{}, errors.Wrapf(err, "fetching player card %d", playerID)
	}
	if len(cardResponse.Players) == 0 {
		return models.PlayerCard{}, errors.Newf("no player card for id %d", playerID)
	}

	entry := cardResponse.Players[0]
	return models.PlayerCard{
		ID:       entry.ID,
		FullName: entry.Player.FullName,
		Position: PositionName(entry.Player.DefaultPositionID),
		ProTeam:  ProTeamName(entry.Player.ProTeamID),
		OnTeamID: entry.OnTeamID,
	}, nil
}

func filterHeader(filters map[string]any) (map[string]string, error) {
	filtersJSON, err := sonic.Marshal(filters)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling filters")
	}
	return map[string]string{
		"x-fantasy-filter": string(filtersJSON),
	}, nil
}

func PositionName(positionID int) string {
	positions := map[int]string{
		1: "QB", 2: "RB", 3: "WR", 4: "TE", 5: "K", 16: "D/ST",
	}
	if pos, ok := positions[positionID]; ok {
		return pos
	}
	return "Unknown"
}

func ProTeamName(proTeamID int) string {
	teams := map[int]string{
		1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN", 8: "DET",
		9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "LV", 14: "LAR", 15: "MIA", 16: "MIN",
		17: "NE", 18: "NO", 19: "NYG", 20: "NYJ", 21: "PHI", 22: "ARI", 23: "PIT", 24: "LAC",
		25: "SF", 26: "SEA", 27: "TB", 28: "WSH", 29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
	}

	if team, ok := teams[proTeamID]; ok {
		return team
	}

	return "Unknown"
}
