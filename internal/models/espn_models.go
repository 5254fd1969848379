package models

type LeagueResponse struct {
	ID              int    `json:"id"`
	ScoringPeriodID int    `json:"scoringPeriodId"`
	SeasonID        int    `json:"seasonId"`
	Teams           []Team `json:"teams"`
}

type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbrev"`
	Roster       Roster `json:"roster"`
}

type Roster struct {
	Entries []RosterEntry `json:"entries"`
}

type RosterEntry struct {
	PlayerID        int             `json:"playerId"`
	PlayerPoolEntry PlayerPoolEntry `json:"playerPoolEntry"`
	LineupSlotID    int             `json:"lineupSlotId"`
}

type PlayerCardResponse struct {
	Players []PlayerPoolEntry `json:"players"`
}

type PlayerPoolEntry struct {
	ID       int    `json:"id"`
	OnTeamID int    `json:"onTeamId"`
	Player   Player `json:"player"`
}

type Player struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
	ProTeamID         int    `json:"proTeamId"`
	Stats             []Stat `json:"stats"`
	// Empty for entries without the field, e.g. team defenses.
	InjuryStatus string `json:"injuryStatus"`
}

type Stat struct {
	StatSourceID    int     `json:"statSourceId"`
	ScoringPeriodID int     `json:"scoringPeriodId"`
	AppliedTotal    float64 `json:"appliedTotal"`
}

// PlayerInfo is one element of the players_wl view.
type PlayerInfo struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
	ProTeamID         int    `json:"proTeamId"`
}
