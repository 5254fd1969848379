package fantasy

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/api/espn"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/omarshaarawi/ffdata/internal/query"
	"github.com/omarshaarawi/ffdata/internal/roster"
)

type API struct {
	espnAPI *espn.API
}

func NewAPI(espnAPI *espn.API) *API {
	return &API{espnAPI: espnAPI}
}

// WeekRecords fetches one scoring period and flattens it into snapshot rows.
func (a *API) WeekRecords(ctx context.Context, week int) ([]models.WeekRecord, error) {
	resp, err := a.espnAPI.FetchWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	return roster.Flatten(resp, week)
}

// PlayerCard resolves a loosely spelled player name through the season's
// player pool and returns that player's card.
func (a *API) PlayerCard(ctx context.Context, name string) (models.PlayerCard, error) {
	players, err := a.espnAPI.PlayerIndex(ctx)
	if err != nil {
		return models.PlayerCard{}, err
	}

	names := make([]string, len(players))
	ids := make(map[string]int, len(players))
	for i, p := range players {
		names[i] = p.FullName
		ids[p.FullName] = p.ID
	}

	match, ok := query.BestMatch(name, names)
	if !ok {
		return models.PlayerCard{}, errors.Newf("player not found: %s", name)
	}
	return a.espnAPI.PlayerCard(ctx, ids[match])
}

func (a *API) PlayerPosition(ctx context.Context, name string) (string, error) {
	card, err := a.PlayerCard(ctx, name)
	if err != nil {
		return "", err
	}
	return card.Position, nil
}
