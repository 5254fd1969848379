// Package snapshot persists flattened season pulls as dated tabular files
// and loads the most recent one back.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/omarshaarawi/ffdata/internal/models"
)

const dateLayout = "2006-01-02"

var ErrNotFound = errors.New("snapshot not found")

// FF2021_playerdata_pulled_2021-12-01.csv, with an optional _N same-day suffix.
var namePattern = regexp.MustCompile(`^FF(\d{4})_playerdata_pulled_(\d{4}-\d{2}-\d{2})(?:_(\d+))?\.(csv|xlsx)$`)

type Store struct {
	dir    string
	ext    string
	now    func() time.Time
	logger *logging.Logger
}

func NewStore(dir, format string, logger *logging.Logger) (*Store, error) {
	ext := "." + strings.ToLower(strings.TrimSpace(format))
	if _, ok := codecFor(ext); !ok {
		return nil, errors.Newf("unsupported snapshot format %q", format)
	}
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{dir: dir, ext: ext, now: time.Now, logger: logger}, nil
}

// Save writes records to a new file named after season and today's date.
// Existing snapshots are never overwritten.
func (s *Store) Save(records []models.WeekRecord, season int) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating snapshot dir %s", s.dir)
	}

	c, _ := codecFor(s.ext)
	base := fmt.Sprintf("FF%d_playerdata_pulled_%s", season, s.now().Format(dateLayout))

	for seq := 1; ; seq++ {
		name := base + s.ext
		if seq > 1 {
			name = fmt.Sprintf("%s_%d%s", base, seq, s.ext)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", errors.Wrapf(err, "creating %s", path)
		}

		if err := c.Encode(f, records); err != nil {
			f.Close()
			os.Remove(path)
			return "", errors.Wrapf(err, "writing %s", path)
		}
		if err := f.Close(); err != nil {
			return "", errors.Wrapf(err, "closing %s", path)
		}

		s.logger.Info("Saved snapshot", "path", path, "rows", len(records))
		return path, nil
	}
}

// Load reads the latest snapshot for season.
func (s *Store) Load(season int) ([]models.WeekRecord, string, error) {
	path, err := s.Latest(season)
	if err != nil {
		return nil, "", err
	}

	c, _ := codecFor(strings.ToLower(filepath.Ext(path)))
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	records, err := c.Decode(f)
	if err != nil {
		return nil, "", errors.Wrapf(err, "parsing %s", path)
	}

	s.logger.Info("Loaded snapshot", "path", path, "rows", len(records))
	return records, path, nil
}

type candidate struct {
	path    string
	date    time.Time
	seq     int
	modTime time.Time
}

// Latest picks the newest snapshot for season. Ordering is by the pull date in
// the file name, then the same-day sequence, then modification time. Files
// without a parsable name fall back to their modification time.
func (s *Store) Latest(season int) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrapf(err, "listing %s", s.dir)
	}

	tag := strconv.Itoa(season)
	var candidates []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if _, ok := codecFor(strings.ToLower(filepath.Ext(name))); !ok {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		c := candidate{path: filepath.Join(s.dir, name), modTime: info.ModTime(), seq: 1}

		if m := namePattern.FindStringSubmatch(name); m != nil {
			if m[1] != tag {
				continue
			}
			date, err := time.Parse(dateLayout, m[2])
			if err != nil {
				continue
			}
			c.date = date
			if m[3] != "" {
				c.seq, _ = strconv.Atoi(m[3])
			}
		} else {
			if !strings.Contains(name, tag) {
				continue
			}
			y, mo, d := info.ModTime().Date()
			c.date = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return "", errors.Wrapf(ErrNotFound, "no snapshot for season %d in %s, pull it first", season, s.dir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if a.seq != b.seq {
			return a.seq < b.seq
		}
		if !a.modTime.Equal(b.modTime) {
			return a.modTime.Before(b.modTime)
		}
		return a.path < b.path
	})

	return candidates[len(candidates)-1].path, nil
}
