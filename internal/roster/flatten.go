// Package roster turns a weekly league payload into flat snapshot rows.
package roster

import (
	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/models"
)

const (
	statSourceActual    = 0
	statSourceProjected = 1
)

var ErrUnknownSlot = errors.New("unknown lineup slot")

var slotPositions = map[int]models.Position{
	0:  models.PositionQB,
	2:  models.PositionRB,
	4:  models.PositionWR,
	6:  models.PositionTE,
	16: models.PositionDef,
	17: models.PositionK,
	20: models.PositionBench,
	21: models.PositionIR,
	23: models.PositionFlex,
}

// SlotPosition maps an ESPN lineup slot id to its position label.
func SlotPosition(slotID int) (models.Position, error) {
	pos, ok := slotPositions[slotID]
	if !ok {
		return "", errors.Wrapf(ErrUnknownSlot, "slot %d", slotID)
	}
	return pos, nil
}

// Flatten emits one record per (team, player) for week. Stats belonging to
// other scoring periods are ignored, so a missing week leaves the points nil.
func Flatten(resp *models.LeagueResponse, week int) ([]models.WeekRecord, error) {
	if resp == nil {
		return nil, nil
	}

	var records []models.WeekRecord
	for _, team := range resp.Teams {
		seen := make(map[string]bool, len(team.Roster.Entries))
		for _, entry := range team.Roster.Entries {
			player := entry.PlayerPoolEntry.Player
			if seen[player.FullName] {
				continue
			}
			seen[player.FullName] = true

			pos, err := SlotPosition(entry.LineupSlotID)
			if err != nil {
				return nil, errors.Wrapf(err, "team %d player %q week %d", team.ID, player.FullName, week)
			}

			status := player.InjuryStatus
			if status == "" {
				status = models.StatusNA
			}

			record := models.WeekRecord{
				Week:     week,
				TeamID:   team.ID,
				Player:   player.FullName,
				Slot:     entry.LineupSlotID,
				Position: pos,
				Status:   status,
			}

			for _, stat := range player.Stats {
				if stat.ScoringPeriodID != week {
					continue
				}
				total := stat.AppliedTotal
				switch stat.StatSourceID {
				case statSourceActual:
					record.Actual = &total
				case statSourceProjected:
					record.Projected = &total
				}
			}

			records = append(records, record)
		}
	}

	return records, nil
}
