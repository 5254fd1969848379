package config

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	ESPNAPI     ESPNAPI
	Snapshot    Snapshot
	Log         Log
	TelegramBot TelegramBot
	Schedule    Schedule
	SeasonsFile string `envconfig:"SEASONS_FILE"`
}

type ESPNAPI struct {
	Year     string `envconfig:"YEAR" required:"true" validate:"numeric,len=4"`
	LeagueID string `envconfig:"LEAGUE_ID" required:"true" validate:"required,numeric"`
	SWID     string `envconfig:"SWID"`
	ESPNS2   string `envconfig:"ESPN_S2"`
	BaseURL  string `envconfig:"ESPN_BASE_URL" default:"https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl" validate:"url"`
}

type Snapshot struct {
	Dir    string `envconfig:"SNAPSHOT_DIR" default:"."`
	Format string `envconfig:"SNAPSHOT_FORMAT" default:"csv" validate:"oneof=csv xlsx"`
}

type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"LOG_FORMAT" default:"console" validate:"oneof=console json"`
}

// TelegramBot is only required by the bot subcommand.
type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type Schedule struct {
	PullCron string `envconfig:"PULL_SCHEDULE" default:"0 8 * * 2"`
	Timezone string `envconfig:"PULL_TIMEZONE" default:"America/Chicago"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(&c); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if _, err := cron.ParseStandard(c.Schedule.PullCron); err != nil {
		return nil, errors.Wrapf(err, "invalid PULL_SCHEDULE %q", c.Schedule.PullCron)
	}
	return &c, nil
}

func (t TelegramBot) Validate() error {
	if t.Token == "" {
		return errors.New("TELEGRAM_TOKEN is required for the bot")
	}
	return nil
}
