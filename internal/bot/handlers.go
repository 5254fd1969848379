package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/omarshaarawi/ffdata/internal/service"
)

const helpText = `Available commands:
/rank <week> <player> - Positional rank among starters
/rankall <week> <player> - Positional rank including bench
/score <week> <player> - Actual and projected points
/status <week> <player> - Started, benched or on waivers
/starters <week> <team> [pos] - Team's starters for a week
/started <team> [pos] - Distinct players started this season
/teams - Team nicknames and ids
/slots [pos] - Starting slot counts
/player <name> - Player card from ESPN
/pull - Pull the season and save a new snapshot
/reload - Reload the latest snapshot from disk`

type Handler struct {
	fantasyService *service.FantasyService
}

func NewHandler(fantasyService *service.FantasyService) *Handler {
	return &Handler{fantasyService: fantasyService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to ffdata! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "rank":
		h.handleWeekPlayer(&msg, args, "rank", func(player string, week int) (string, error) {
			return h.fantasyService.GetRank(player, week, true)
		})
	case "rankall":
		h.handleWeekPlayer(&msg, args, "rankall", func(player string, week int) (string, error) {
			return h.fantasyService.GetRank(player, week, false)
		})
	case "score":
		h.handleWeekPlayer(&msg, args, "score", h.fantasyService.GetScore)
	case "status":
		h.handleWeekPlayer(&msg, args, "status", h.fantasyService.GetStatus)
	case "starters":
		h.handleStarters(&msg, args)
	case "started":
		h.handleStarted(&msg, args)
	case "teams":
		reply(&msg, "listing teams")(h.fantasyService.GetTeams())
	case "slots":
		h.handleSlots(&msg, args)
	case "player":
		h.handlePlayer(ctx, &msg, args)
	case "pull":
		h.handlePull(ctx, &msg)
	case "reload":
		h.handleReload(&msg)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func reply(msg *tgbotapi.MessageConfig, action string) func(string, error) {
	return func(text string, err error) {
		if err != nil {
			msg.Text = fmt.Sprintf("Error %s: %v", action, err)
			return
		}
		msg.Text = text
	}
}

// splitWeek splits "<week> <rest>" arguments.
func splitWeek(args string) (int, string, bool) {
	head, rest, _ := strings.Cut(args, " ")
	week, err := strconv.Atoi(head)
	if err != nil || week < 1 {
		return 0, "", false
	}
	return week, strings.TrimSpace(rest), true
}

// splitPosition peels an optional trailing position off the arguments.
func splitPosition(args string) (string, models.Position) {
	fields := strings.Fields(args)
	if len(fields) > 1 {
		if pos, ok := models.ParsePosition(fields[len(fields)-1]); ok {
			return strings.Join(fields[:len(fields)-1], " "), pos
		}
	}
	return args, ""
}

func (h *Handler) handleWeekPlayer(msg *tgbotapi.MessageConfig, args, command string, fn func(string, int) (string, error)) {
	week, player, ok := splitWeek(args)
	if !ok || player == "" {
		msg.Text = fmt.Sprintf("Please provide a week and a player. Usage: /%s <week> <player name>", command)
		return
	}
	reply(msg, "running "+command)(fn(player, week))
}

func (h *Handler) handleStarters(msg *tgbotapi.MessageConfig, args string) {
	week, rest, ok := splitWeek(args)
	if !ok || rest == "" {
		msg.Text = "Please provide a week and a team. Usage: /starters <week> <team> [pos]"
		return
	}
	team, pos := splitPosition(rest)
	reply(msg, "getting starters")(h.fantasyService.GetStarters(team, week, pos))
}

func (h *Handler) handleStarted(msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a team. Usage: /started <team> [pos]"
		return
	}
	team, pos := splitPosition(args)
	reply(msg, "counting starters")(h.fantasyService.GetNumStarted(team, pos))
}

func (h *Handler) handleSlots(msg *tgbotapi.MessageConfig, args string) {
	var pos models.Position
	if args != "" {
		p, ok := models.ParsePosition(args)
		if !ok {
			msg.Text = fmt.Sprintf("Position %s not recognized.", args)
			return
		}
		pos = p
	}
	reply(msg, "getting slots")(h.fantasyService.GetSlots(pos))
}

func (h *Handler) handlePlayer(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a player name. Usage: /player <player name>"
		return
	}
	reply(msg, "looking up player")(h.fantasyService.GetPlayerCard(ctx, args))
}

func (h *Handler) handlePull(ctx context.Context, msg *tgbotapi.MessageConfig) {
	path, err := h.fantasyService.PullSeason(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error pulling season: %v", err)
		return
	}
	msg.Text = fmt.Sprintf("✅ Season %d pulled and saved to `%s`.", h.fantasyService.Season().Year, path)
}

func (h *Handler) handleReload(msg *tgbotapi.MessageConfig) {
	tbl, err := h.fantasyService.LoadSnapshot()
	if err != nil {
		msg.Text = fmt.Sprintf("Error loading snapshot: %v", err)
		return
	}
	msg.Text = fmt.Sprintf("🔄 Loaded %d rows for season %d.", tbl.Len(), h.fantasyService.Season().Year)
}
