// Package season holds the static per-season reference data for the league:
// regular-season length, team nicknames and starting roster slot counts.
//
// The tables ship embedded in seasons.json. Adding a season means adding an
// entry there, or pointing SEASONS_FILE at a replacement file.
package season

import (
	_ "embed"
	"os"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

const defaultWeeks = 14

var ErrUnknownTeam = errors.New("unknown team")

//go:embed seasons.json
var embedded []byte

type Season struct {
	Year       int            `json:"year" validate:"gte=2000"`
	Weeks      int            `json:"weeks" validate:"gte=1,lte=18"`
	Teams      map[string]int `json:"teams" validate:"dive,keys,required,endkeys,gt=0"`
	Slots      map[string]int `json:"slots" validate:"dive,keys,oneof=QB RB WR TE K Def Flex,endkeys,gte=0"`
	TotalSlots int            `json:"totalSlots" validate:"gte=0"`
}

type Catalog struct {
	seasons map[int]Season
}

var validate = validator.New()

// Load reads the season tables from path, or the embedded tables when path is empty.
func Load(path string) (*Catalog, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading seasons file %s", path)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var list []Season
	if err := sonic.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "decoding seasons")
	}

	c := &Catalog{seasons: make(map[int]Season, len(list))}
	for _, s := range list {
		if err := validate.Struct(s); err != nil {
			return nil, errors.Wrapf(err, "season %d", s.Year)
		}
		if _, dup := c.seasons[s.Year]; dup {
			return nil, errors.Newf("season %d listed twice", s.Year)
		}
		seen := make(map[int]string, len(s.Teams))
		for name, id := range s.Teams {
			if other, ok := seen[id]; ok {
				return nil, errors.Newf("season %d: team id %d used by both %q and %q", s.Year, id, other, name)
			}
			seen[id] = name
		}
		c.seasons[s.Year] = s
	}
	return c, nil
}

// Lookup returns the tables for year. Seasons missing from the catalog get the
// default regular-season length and empty tables.
func (c *Catalog) Lookup(year int) (Season, bool) {
	if s, ok := c.seasons[year]; ok {
		return s, true
	}
	return Season{Year: year, Weeks: defaultWeeks}, false
}

func (c *Catalog) Years() []int {
	years := make([]int, 0, len(c.seasons))
	for y := range c.seasons {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (s Season) TeamID(nickname string) (int, bool) {
	id, ok := s.Teams[nickname]
	return id, ok
}

func (s Season) Nickname(teamID int) (string, error) {
	for name, id := range s.Teams {
		if id == teamID {
			return name, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownTeam, "team id %d in season %d", teamID, s.Year)
}

// Nicknames returns a copy of the nickname to team id table.
func (s Season) Nicknames() map[string]int {
	out := make(map[string]int, len(s.Teams))
	for k, v := range s.Teams {
		out[k] = v
	}
	return out
}

// SlotCount returns the number of starting slots for pos, or the total when pos is empty.
func (s Season) SlotCount(pos string) (int, bool) {
	if pos == "" {
		return s.TotalSlots, true
	}
	n, ok := s.Slots[pos]
	return n, ok
}
