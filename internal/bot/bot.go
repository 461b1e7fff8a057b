// Package bot is the Telegram transport: it receives commands from the
// group, dispatches them against the ledger, and presents results and
// errors as text. All ownership and aggregation logic lives in the ledger
// package; this layer only parses and formats.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"ledgerbot/internal/config"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/render"
	"ledgerbot/internal/wiguna"
)

type commandHandler func(ctx context.Context, msg telego.Message, args []string) error

type Bot struct {
	api     *telego.Bot
	ledger  *ledger.Service
	signals *wiguna.Client
	logger  *zap.Logger

	groupChatID    int64
	deleteCommands bool
	handlers       map[string]commandHandler
}

func New(cfg config.BotConfig, ledgerSvc *ledger.Service, signals *wiguna.Client, logger *zap.Logger) (*Bot, error) {
	api, err := telego.NewBot(cfg.Token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:            api,
		ledger:         ledgerSvc,
		signals:        signals,
		logger:         logger,
		groupChatID:    cfg.GroupChatID,
		deleteCommands: cfg.DeleteCommands,
	}
	b.registerCommands()
	return b, nil
}

// Run long-polls until the context is cancelled. Each update is handled on
// its own goroutine so a slow remote call (the signal forwarder) never
// blocks the command path.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return err
	}
	b.logger.Info("bot running")
	for update := range updates {
		msg := update.Message
		if msg == nil || msg.From == nil {
			continue
		}
		go b.handle(ctx, *msg)
	}
	return ctx.Err()
}

// handle dispatches one command. A panic or error in a handler is logged
// and reported back as text; the dispatcher itself never dies.
func (b *Bot) handle(ctx context.Context, msg telego.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command handler panicked", zap.Any("panic", r))
			b.reply(ctx, msg.Chat.ID, "⚠️ Something went wrong, please try again")
		}
	}()

	cmd, args := SplitCommand(msg.Text)
	handler, ok := b.handlers[cmd]
	if !ok {
		return
	}
	b.maybeDeleteCommand(ctx, msg)
	if err := handler(ctx, msg, args); err != nil {
		b.reply(ctx, msg.Chat.ID, b.userFacing(cmd, err))
	}
}

// maybeDeleteCommand reduces chat clutter; it needs the "Delete messages"
// group permission and silently ignores failures.
func (b *Bot) maybeDeleteCommand(ctx context.Context, msg telego.Message) {
	if !b.deleteCommands {
		return
	}
	err := b.api.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(msg.Chat.ID),
		MessageID: msg.MessageID,
	})
	if err != nil {
		b.logger.Debug("could not delete command message", zap.Error(err))
	}
}

// userFacing is the single mapping from the error taxonomy to chat text.
func (b *Bot) userFacing(cmd string, err error) string {
	var verr *ledger.ValidationError
	var apiErr *wiguna.APIError
	switch {
	case errors.As(err, &verr):
		return "⚠️ " + verr.Msg
	case errors.Is(err, ledger.ErrNotFound):
		return "❌ Not found"
	case errors.Is(err, ledger.ErrForbidden):
		return "⛔ You can only change your own records"
	case errors.Is(err, wiguna.ErrMissingCredentials):
		return "❌ Failed to get Wiguna token: " + err.Error()
	case errors.As(err, &apiErr):
		return fmt.Sprintf("❌ Signal failed (status: %d).\nBody: %s", apiErr.Status, apiErr.Body)
	default:
		b.logger.Error("command failed", zap.String("command", cmd), zap.Error(err))
		return "⚠️ Something went wrong, please try again"
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	for _, chunk := range render.Chunk(text, render.MaxMessageLen) {
		if _, err := b.api.SendMessage(ctx, tu.Message(tu.ID(chatID), chunk)); err != nil {
			b.logger.Warn("failed to send message", zap.Error(err))
			return
		}
	}
}

func (b *Bot) sendDocument(ctx context.Context, chatID int64, name string, data []byte) {
	doc := tu.Document(tu.ID(chatID), tu.File(tu.NameReader(bytes.NewReader(data), name)))
	if _, err := b.api.SendDocument(ctx, doc); err != nil {
		b.logger.Warn("failed to send document", zap.Error(err))
		b.reply(ctx, chatID, "⚠️ Failed to send export file")
	}
}

func actorFrom(user *telego.User) ledger.Actor {
	return ledger.NewActor(user.FirstName, user.Username)
}

// BroadcastDailyRecap pushes the daily recap to the configured group; the
// cron schedule calls it on business days.
func (b *Bot) BroadcastDailyRecap(ctx context.Context) error {
	if b.groupChatID == 0 {
		return nil
	}
	recap, err := b.ledger.Recap(ctx, ledger.PeriodDaily)
	if err != nil {
		return err
	}
	b.reply(ctx, b.groupChatID, render.DailyRecap(recap))
	return nil
}
