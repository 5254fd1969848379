package bot

import (
	"context"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/omarshaarawi/ffdata/internal/service"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
	logger  *logging.Logger
}

func NewTelegramBot(token string, chatID int64, fantasyService *service.FantasyService, logger *logging.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to telegram")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &TelegramBot{
		bot:     bot,
		handler: NewHandler(fantasyService),
		chatID:  chatID,
		logger:  logger,
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	t.logger.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			if update.Message.IsCommand() {
				msg := t.handler.HandleCommand(ctx, update)
				if _, err := t.bot.Send(msg); err != nil {
					t.logger.Error("Error sending message", "error", err)
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		t.logger.Error("Chat ID not set")
		return errors.New("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	_, err := t.bot.Send(msg)
	if err != nil {
		t.logger.Error("Error sending message", "error", err)
	}
	return err
}
