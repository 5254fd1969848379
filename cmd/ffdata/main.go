package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/omarshaarawi/ffdata/internal/api/espn"
	"github.com/omarshaarawi/ffdata/internal/api/fantasy"
	"github.com/omarshaarawi/ffdata/internal/bot"
	"github.com/omarshaarawi/ffdata/internal/config"
	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/omarshaarawi/ffdata/internal/query"
	"github.com/omarshaarawi/ffdata/internal/repository/memory"
	"github.com/omarshaarawi/ffdata/internal/scheduler"
	"github.com/omarshaarawi/ffdata/internal/season"
	"github.com/omarshaarawi/ffdata/internal/service"
	"github.com/omarshaarawi/ffdata/internal/snapshot"
)

const usage = `usage: ffdata <command> [flags] [args]

commands:
  pull                                   pull every regular-season week and save a snapshot
  rank     -week N [-all] <player>       positional rank among starters (or everyone with -all)
  score    -week N [-projected] <player> actual or projected points
  status   -week N <player>              started, benched or waivers
  starters -week N [-pos P] <team>       a team's starters for a week
  started  [-pos P] <team>               distinct players a team started this season
  team     <nickname|id>                 translate between nickname and team id
  teams                                  list the season's nicknames
  slots    [-pos P]                      starting slot counts
  position <player>                      player's position from ESPN
  bot                                    run the telegram bot and scheduled pulls`

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Default().Error("Error running application", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	service *service.FantasyService
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("no command given")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Format, level)
	logging.SetDefault(logger)
	defer logger.Sync()

	year, err := strconv.Atoi(cfg.ESPNAPI.Year)
	if err != nil {
		return errors.Wrapf(err, "invalid YEAR %q", cfg.ESPNAPI.Year)
	}
	catalog, err := season.Load(cfg.SeasonsFile)
	if err != nil {
		return err
	}
	s, ok := catalog.Lookup(year)
	if !ok {
		logger.Warn("Season not in lookup tables, team and slot lookups will be empty", "season", year)
	}

	store, err := snapshot.NewStore(cfg.Snapshot.Dir, cfg.Snapshot.Format, logger)
	if err != nil {
		return err
	}

	espnClient := espn.NewClient(cfg.ESPNAPI, logger)
	espnAPI := espn.NewAPI(espnClient)
	fantasyAPI := fantasy.NewAPI(espnAPI)

	repo := memory.NewRepository()
	a := &app{
		cfg:     cfg,
		logger:  logger,
		service: service.NewFantasyService(fantasyAPI, store, repo, s, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "pull":
		return a.pull(ctx)
	case "rank":
		return a.rank(rest)
	case "score":
		return a.score(rest)
	case "status":
		return a.status(rest)
	case "starters":
		return a.starters(rest)
	case "started":
		return a.started(rest)
	case "team":
		return a.team(rest)
	case "teams":
		return a.teams()
	case "slots":
		return a.slots(rest)
	case "position":
		return a.position(ctx, rest)
	case "bot":
		return a.bot(ctx)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return errors.Newf("unknown command %q", cmd)
	}
}

func (a *app) pull(ctx context.Context) error {
	path, err := a.service.PullSeason(ctx)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func parsePos(s string) (models.Position, error) {
	if s == "" {
		return "", nil
	}
	pos, ok := models.ParsePosition(s)
	if !ok {
		return "", errors.Newf("unknown position %q", s)
	}
	return pos, nil
}

// player resolves the typed name the same way the bot does. A near miss is
// queried as typed and the candidate goes to stderr.
func (a *app) player(tbl *query.Table, args []string) string {
	player, suggestion := tbl.LookupPlayer(strings.Join(args, " "))
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "%q not found, did you mean %q?\n", player, suggestion)
	}
	return player
}

func (a *app) rank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	week := fs.Int("week", 1, "scoring week")
	all := fs.Bool("all", false, "rank among every rostered player, not only starters")
	_ = fs.Parse(args)

	tbl, err := a.service.Table()
	if err != nil {
		return err
	}
	rank, ok := tbl.Rank(a.player(tbl, fs.Args()), *week, !*all)
	if !ok {
		fmt.Println("NaN")
		return nil
	}
	fmt.Println(rank)
	return nil
}

func (a *app) score(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	week := fs.Int("week", 1, "scoring week")
	projected := fs.Bool("projected", false, "report projected instead of actual points")
	_ = fs.Parse(args)

	tbl, err := a.service.Table()
	if err != nil {
		return err
	}
	fmt.Println(strconv.FormatFloat(tbl.Score(a.player(tbl, fs.Args()), *week, *projected), 'f', -1, 64))
	return nil
}

func (a *app) status(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	week := fs.Int("week", 1, "scoring week")
	_ = fs.Parse(args)

	tbl, err := a.service.Table()
	if err != nil {
		return err
	}
	player := a.player(tbl, fs.Args())
	switch {
	case tbl.WasStarted(player, *week):
		fmt.Println("started")
	case tbl.WasBenched(player, *week):
		fmt.Println("benched")
	default:
		fmt.Println("waivers")
	}
	return nil
}

func (a *app) starters(args []string) error {
	fs := flag.NewFlagSet("starters", flag.ExitOnError)
	week := fs.Int("week", 1, "scoring week")
	posFlag := fs.String("pos", "", "only this position")
	_ = fs.Parse(args)

	pos, err := parsePos(*posFlag)
	if err != nil {
		return err
	}
	tbl, err := a.service.Table()
	if err != nil {
		return err
	}
	team := tbl.ResolveTeam(strings.Join(fs.Args(), " "))
	for _, p := range tbl.TeamStarters(team, *week, pos) {
		fmt.Println(p)
	}
	return nil
}

func (a *app) started(args []string) error {
	fs := flag.NewFlagSet("started", flag.ExitOnError)
	posFlag := fs.String("pos", "", "only this position")
	_ = fs.Parse(args)

	pos, err := parsePos(*posFlag)
	if err != nil {
		return err
	}
	tbl, err := a.service.Table()
	if err != nil {
		return err
	}
	team := tbl.ResolveTeam(strings.Join(fs.Args(), " "))
	fmt.Println(tbl.NumPlayersStarted(team, pos))
	return nil
}

func (a *app) team(args []string) error {
	if len(args) == 0 {
		return errors.New("team needs a nickname or id")
	}
	s := a.service.Season()
	arg := strings.Join(args, " ")
	if id, err := strconv.Atoi(arg); err == nil {
		name, err := s.Nickname(id)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	}
	id, ok := s.TeamID(arg)
	if !ok {
		a.logger.Warn("Nickname not recognized", "nickname", arg, "season", s.Year)
		id = -1
	}
	fmt.Println(id)
	return nil
}

func (a *app) teams() error {
	out, err := a.service.GetTeams()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func (a *app) slots(args []string) error {
	fs := flag.NewFlagSet("slots", flag.ExitOnError)
	posFlag := fs.String("pos", "", "position, empty for the lineup total")
	_ = fs.Parse(args)

	pos, err := parsePos(*posFlag)
	if err != nil {
		return err
	}
	n, ok := a.service.Season().SlotCount(string(pos))
	if !ok {
		a.logger.Warn("Position not recognized", "position", pos)
		n = -1
	}
	fmt.Println(n)
	return nil
}

func (a *app) position(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("position needs a player name")
	}
	out, err := a.service.GetPlayerCard(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func (a *app) bot(ctx context.Context) error {
	if err := a.cfg.TelegramBot.Validate(); err != nil {
		return err
	}

	if _, err := a.service.LoadSnapshot(); err != nil {
		a.logger.Warn("No snapshot loaded yet, use /pull", "error", err)
	}

	telegramBot, err := bot.NewTelegramBot(a.cfg.TelegramBot.Token, a.cfg.TelegramBot.ChatID, a.service, a.logger)
	if err != nil {
		return err
	}

	var send func(string) error
	if a.cfg.TelegramBot.ChatID != 0 {
		send = telegramBot.SendMessage
	}
	sched, err := scheduler.NewScheduler(a.cfg.Schedule, a.service, send, a.logger)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
	}()

	http.HandleFunc("/", healthCheckHandler)

	go func() {
		if err := http.ListenAndServe(":80", nil); err != nil {
			a.logger.Error("Error starting HTTP server", "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			a.logger.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	a.logger.Info("Shutting down gracefully...")

	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
