package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"ledgerbot/internal/export"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/render"
	"ledgerbot/internal/wiguna"
)

func (b *Bot) registerCommands() {
	b.handlers = map[string]commandHandler{
		"tadd":    b.cmdTradeAdd,
		"tedit":   b.cmdTradeEdit,
		"tdel":    b.cmdTradeDelete,
		"tlist":   b.cmdTradeList,
		"texport": b.cmdTradeExport,

		"padd":    b.cmdPositionAdd,
		"pedit":   b.cmdPositionEdit,
		"pdel":    b.cmdPositionDelete,
		"plist":   b.cmdPositionList,
		"pall":    b.cmdPositionSummary,
		"pexport": b.cmdPositionExport,

		"rc": b.cmdRecap,
		"wd": b.cmdWeekly,
		"mo": b.cmdMonthly,
		"lb": b.cmdLeaderboard,
		"s":  b.cmdSymbol,
		"me": b.cmdMyStats,

		"admin_trade_add": b.cmdAdminTradeAdd,
		"admin_pos_add":   b.cmdAdminPositionAdd,

		"set_signal": b.cmdSetSignal,
		"help":       b.cmdHelp,
	}
}

func usage(text string) error {
	return &ledger.ValidationError{Msg: "Usage: " + text}
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &ledger.ValidationError{Msg: "ID must be a positive number"}
	}
	return id, nil
}

// resolveUserFilter turns a --user value into the two-tier filter pieces;
// "me" resolves to the caller.
func resolveUserFilter(raw string, actor ledger.Actor) (user, userKey string) {
	if strings.EqualFold(raw, "me") {
		return actor.DisplayName, actor.Key
	}
	return raw, ""
}

// --- trades -----------------------------------------------------------------

func (b *Bot) cmdTradeAdd(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 2 {
		return usage("/tadd SYMBOL AMOUNT")
	}
	actor := actorFrom(msg.From)
	item, err := b.ledger.AddTrade(ctx, actor, args[0], args[1])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Logged %s %s for %s [%d]",
		item.Symbol, render.Amount(item.Amount), item.OwnerName, item.ID))
	return nil
}

func (b *Bot) cmdTradeEdit(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 2 {
		return usage("/tedit ID NEW_AMOUNT")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	actor := actorFrom(msg.From)
	item, err := b.ledger.EditTrade(ctx, actor, id, args[1])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✏️ Updated trade %d → %s", id, render.Amount(item.Amount)))
	return nil
}

func (b *Bot) cmdTradeDelete(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 1 {
		return usage("/tdel ID")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := b.ledger.DeleteTrade(ctx, actorFrom(msg.From), id); err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("🗑️ Deleted trade %d", id))
	return nil
}

func (b *Bot) tradeFilter(msg telego.Message, args []string) ledger.TradeFilter {
	f := ParseFlags(args)
	user, userKey := resolveUserFilter(f.User, actorFrom(msg.From))
	return ledger.TradeFilter{
		User:    user,
		UserKey: userKey,
		Symbol:  f.Symbol,
		From:    f.From,
		To:      f.To,
	}
}

func (b *Bot) cmdTradeList(ctx context.Context, msg telego.Message, args []string) error {
	items, err := b.ledger.ListTrades(ctx, b.tradeFilter(msg, args))
	if err != nil {
		return err
	}
	groups, total := ledger.GroupTrades(items)
	b.reply(ctx, msg.Chat.ID, render.TradeList(groups, total))
	return nil
}

func (b *Bot) cmdTradeExport(ctx context.Context, msg telego.Message, args []string) error {
	items, err := b.ledger.ListTrades(ctx, b.tradeFilter(msg, args))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		b.reply(ctx, msg.Chat.ID, "📊 No trades found for given filters.")
		return nil
	}
	data, err := export.Trades(items)
	if err != nil {
		return err
	}
	b.sendDocument(ctx, msg.Chat.ID, "trades_"+b.ledger.Today()+".csv", data)
	return nil
}

// --- positions --------------------------------------------------------------

func (b *Bot) cmdPositionAdd(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 3 {
		return usage("/padd SYMBOL QTY AVG_PRICE")
	}
	actor := actorFrom(msg.From)
	item, err := b.ledger.AddPosition(ctx, actor, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Logged position %s Qty: %s Avg Price: %s for %s [%d]",
		item.Symbol, item.Quantity.String(), item.AvgPrice.String(), item.OwnerName, item.ID))
	return nil
}

func (b *Bot) cmdPositionEdit(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 3 {
		return usage("/pedit ID NEW_QTY NEW_AVG_PRICE")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	item, err := b.ledger.EditPosition(ctx, actorFrom(msg.From), id, args[1], args[2])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✏️ Updated position %d → Qty: %s, Avg Price: %s",
		id, item.Quantity.String(), item.AvgPrice.String()))
	return nil
}

// cmdPositionDelete accepts one or many ids and reports each outcome
// separately; one bad id never blocks the rest.
func (b *Bot) cmdPositionDelete(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 1 {
		return usage("/pdel ID [ID ...]")
	}
	actor := actorFrom(msg.From)
	ids := make([]uint64, 0, len(args))
	var lines []string
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			lines = append(lines, fmt.Sprintf("⚠️ %s: not a valid ID", arg))
			continue
		}
		ids = append(ids, id)
	}
	for _, outcome := range b.ledger.DeletePositions(ctx, actor, ids) {
		switch {
		case outcome.Err == nil:
			lines = append(lines, fmt.Sprintf("🗑️ Deleted position %d", outcome.ID))
		default:
			lines = append(lines, fmt.Sprintf("%d: %s", outcome.ID, b.userFacing("pdel", outcome.Err)))
		}
	}
	b.reply(ctx, msg.Chat.ID, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) positionFilter(msg telego.Message, args []string) ledger.PositionFilter {
	f := ParseFlags(args)
	user, userKey := resolveUserFilter(f.User, actorFrom(msg.From))
	return ledger.PositionFilter{User: user, UserKey: userKey, Symbol: f.Symbol}
}

func (b *Bot) cmdPositionList(ctx context.Context, msg telego.Message, args []string) error {
	items, err := b.ledger.ListPositions(ctx, b.positionFilter(msg, args))
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.PositionList(items))
	return nil
}

func (b *Bot) cmdPositionSummary(ctx context.Context, msg telego.Message, args []string) error {
	summary, err := b.ledger.PositionSummaryAll(ctx)
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.PositionSummary(summary))
	return nil
}

func (b *Bot) cmdPositionExport(ctx context.Context, msg telego.Message, args []string) error {
	items, err := b.ledger.ListPositions(ctx, b.positionFilter(msg, args))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		b.reply(ctx, msg.Chat.ID, "📊 No positions found.")
		return nil
	}
	data, err := export.Positions(items)
	if err != nil {
		return err
	}
	b.sendDocument(ctx, msg.Chat.ID, "positions_"+b.ledger.Today()+".csv", data)
	return nil
}

// --- recaps and stats -------------------------------------------------------

func (b *Bot) cmdRecap(ctx context.Context, msg telego.Message, args []string) error {
	period := ledger.PeriodMonthly
	if len(args) > 0 {
		parsed, ok := ledger.ParsePeriod(strings.ToLower(args[0]))
		if !ok {
			return usage("/rc [daily|weekly|monthly]")
		}
		period = parsed
	}
	recap, err := b.ledger.Recap(ctx, period)
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.PeriodRecap(recap))
	return nil
}

func (b *Bot) cmdWeekly(ctx context.Context, msg telego.Message, args []string) error {
	return b.cmdRecap(ctx, msg, []string{string(ledger.PeriodWeekly)})
}

func (b *Bot) cmdMonthly(ctx context.Context, msg telego.Message, args []string) error {
	return b.cmdRecap(ctx, msg, []string{string(ledger.PeriodMonthly)})
}

func (b *Bot) cmdLeaderboard(ctx context.Context, msg telego.Message, args []string) error {
	rows, err := b.ledger.Leaderboard(ctx)
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.Leaderboard(rows))
	return nil
}

func (b *Bot) cmdSymbol(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 1 {
		return usage("/s SYMBOL")
	}
	report, err := b.ledger.SymbolView(ctx, args[0])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.SymbolView(report))
	return nil
}

func (b *Bot) cmdMyStats(ctx context.Context, msg telego.Message, args []string) error {
	stats, err := b.ledger.UserMonthlyStats(ctx, actorFrom(msg.From))
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, render.UserStats(stats))
	return nil
}

// --- admin ------------------------------------------------------------------

func (b *Bot) cmdAdminTradeAdd(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 3 {
		return usage("/admin_trade_add USER SYMBOL AMOUNT")
	}
	item, err := b.ledger.AdminAddTrade(ctx, actorFrom(msg.From), args[0], args[1], args[2])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Added trade %s %s for %s [%d]",
		item.Symbol, render.Amount(item.Amount), item.OwnerName, item.ID))
	return nil
}

func (b *Bot) cmdAdminPositionAdd(ctx context.Context, msg telego.Message, args []string) error {
	if len(args) < 4 {
		return usage("/admin_pos_add USER SYMBOL QTY AVG_PRICE")
	}
	item, err := b.ledger.AdminAddPosition(ctx, actorFrom(msg.From), args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Added position %s Qty: %s Avg Price: %s for %s [%d]",
		item.Symbol, item.Quantity.String(), item.AvgPrice.String(), item.OwnerName, item.ID))
	return nil
}

// --- signals ----------------------------------------------------------------

func (b *Bot) cmdSetSignal(ctx context.Context, msg telego.Message, args []string) error {
	if b.signals == nil {
		return &ledger.ValidationError{Msg: "Signal forwarding is not configured"}
	}
	if len(args) < 2 {
		return usage("/set_signal SYMBOL ENTRY [NOTE]")
	}
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	entry, err := ledger.ParseAmount(args[1])
	if err != nil {
		return &ledger.ValidationError{Msg: "ENTRY must be a number"}
	}
	note := ""
	if len(args) > 2 {
		note = strings.TrimSpace(strings.Join(args[2:], " "))
	}
	body, err := b.signals.SendSignal(ctx, wiguna.Signal{
		Symbol:    symbol,
		Entry:     entry,
		Note:      note,
		Requester: actorFrom(msg.From).Key,
	})
	if err != nil {
		return err
	}
	if len(body) > 400 {
		body = body[:400]
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Signal sent: %s entry %s\nResponse: %s", symbol, entry.String(), body))
	return nil
}

func (b *Bot) cmdHelp(ctx context.Context, msg telego.Message, args []string) error {
	b.reply(ctx, msg.Chat.ID, render.Help())
	return nil
}
