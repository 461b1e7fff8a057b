// Package render turns aggregator results into chat text. The formatting
// contract: amounts carry an explicit sign, comma thousands separators and
// zero decimal places; computed average prices carry two decimal places.
package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/ledger"
	"ledgerbot/internal/models"
)

// MaxMessageLen keeps replies under the Telegram message limit.
const MaxMessageLen = 4000

// maxRowsPerOwner caps how many trades are printed per owner group.
// Presentation only; totals always cover the full listing.
const maxRowsPerOwner = 50

// Amount renders a signed, comma-grouped integer amount with a trend marker.
func Amount(d decimal.Decimal) string {
	marker := "➖"
	if d.Sign() > 0 {
		marker = "📈"
	} else if d.Sign() < 0 {
		marker = "📉"
	}
	return Signed(d) + " " + marker
}

// Signed renders +1,250,000 style without a marker.
func Signed(d decimal.Decimal) string {
	rounded := d.Round(0)
	sign := "+"
	if rounded.Sign() < 0 {
		sign = "-"
	}
	return sign + groupThousands(rounded.Abs().String())
}

// Price renders a computed average price with two decimals.
func Price(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func totalLine(label string, total decimal.Decimal) string {
	marker := "✅"
	if total.Sign() < 0 {
		marker = "❌"
	}
	return fmt.Sprintf("%s: %s %s", label, Signed(total), marker)
}

// TradeList renders a filtered listing grouped by owner, capped per owner.
func TradeList(groups []ledger.OwnerGroup, total decimal.Decimal) string {
	if len(groups) == 0 {
		return "📊 No trades found for given filters."
	}
	var b strings.Builder
	b.WriteString("📊 Trades\n\n")
	for _, g := range groups {
		b.WriteString(g.Owner + ":\n")
		shown := g.Trades
		if len(shown) > maxRowsPerOwner {
			shown = shown[:maxRowsPerOwner]
		}
		for _, t := range shown {
			fmt.Fprintf(&b, "  [%d] %s %s: %s\n", t.ID, t.TradeDate, t.Symbol, Amount(t.Amount))
		}
		if rest := len(g.Trades) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", rest)
		}
		b.WriteString("\n")
	}
	b.WriteString(totalLine("💰 Group Total", total))
	return b.String()
}

// DailyRecap lists each trade per owner; the scheduled broadcast uses it.
func DailyRecap(recap *ledger.Recap) string {
	title := fmt.Sprintf("📊 Daily Recap — %s", recap.Date)
	if len(recap.Owners) == 0 {
		return title + "\n\nNo trades logged today."
	}
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, g := range recap.Owners {
		b.WriteString(g.Owner + ":\n")
		for _, t := range g.Trades {
			fmt.Fprintf(&b, "  - %s: %s\n", t.Symbol, Amount(t.Amount))
		}
		b.WriteString("\n")
	}
	b.WriteString(totalLine("💰 Group Total", recap.Total))
	return b.String()
}

// PeriodRecap shows one subtotal line per owner plus the group total.
func PeriodRecap(recap *ledger.Recap) string {
	var title string
	switch recap.Period {
	case ledger.PeriodWeekly:
		title = "📅 Weekly Recap"
	case ledger.PeriodDaily:
		title = "📅 Daily Recap"
	default:
		title = "📅 Monthly Recap"
	}
	if len(recap.Owners) == 0 {
		return title + "\n\nNo trades found."
	}
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, g := range recap.Owners {
		marker := "📈"
		if g.Subtotal.Sign() < 0 {
			marker = "📉"
		}
		fmt.Fprintf(&b, "%s: %s %s\n", g.Owner, Signed(g.Subtotal), marker)
	}
	b.WriteString("\n" + totalLine("💰 Group Total", recap.Total))
	return b.String()
}

func Leaderboard(rows []ledger.LeaderboardRow) string {
	if len(rows) == 0 {
		return "🏆 Leaderboard\n\nNo trades yet."
	}
	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 Leaderboard — This Month\n\n")
	for i, row := range rows {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		marker := "📈"
		if row.Total.Sign() < 0 {
			marker = "📉"
		}
		fmt.Fprintf(&b, "%s %s: %s %s\n", rank, row.Owner, Signed(row.Total), marker)
	}
	return b.String()
}

func SymbolView(report *ledger.SymbolReport) string {
	if len(report.Owners) == 0 {
		return fmt.Sprintf("📊 No trades for %s", report.Symbol)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Trades for %s\n\n", report.Symbol)
	for _, g := range report.Owners {
		for _, t := range g.Trades {
			fmt.Fprintf(&b, "  %s: %s\n", g.Owner, Amount(t.Amount))
		}
		fmt.Fprintf(&b, "  Subtotal: %s 💰\n\n", Signed(g.Subtotal))
	}
	b.WriteString(totalLine("Group Net", report.Net))
	return b.String()
}

func UserStats(stats *ledger.UserStats) string {
	if len(stats.Symbols) == 0 {
		return fmt.Sprintf("📊 No trades for %s this month", stats.User)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 My Stats — %s (%s)\n\n", stats.Month, stats.User)
	for _, st := range stats.Symbols {
		fmt.Fprintf(&b, "%s: %s\n", st.Symbol, Amount(st.Total))
	}
	b.WriteString("\n" + totalLine("💰 Total", stats.Total))
	return b.String()
}

// PositionList renders a filtered listing grouped by owner.
func PositionList(items []models.Position) string {
	if len(items) == 0 {
		return "📊 No positions found."
	}
	var b strings.Builder
	b.WriteString("📊 Positions\n\n")
	writeOwnerPositions(&b, items)
	return strings.TrimRight(b.String(), "\n")
}

func PositionSummary(summary *ledger.PositionSummary) string {
	if len(summary.Owners) == 0 {
		return "📊 No positions found."
	}
	var b strings.Builder
	b.WriteString("📊 All Positions:\n\n")
	for _, owner := range summary.Owners {
		writeOwnerPositions(&b, owner.Positions)
	}
	b.WriteString("------\n🧮 Group Stock Totals:\n")
	for _, st := range summary.Symbols {
		fmt.Fprintf(&b, "%s: Total Qty=%s, Group Avg Price=%s\n", st.Symbol, st.TotalQty.String(), Price(st.AvgPrice))
	}
	return b.String()
}

func writeOwnerPositions(b *strings.Builder, items []models.Position) {
	owner := ""
	for _, p := range items {
		if p.OwnerName != owner {
			if owner != "" {
				b.WriteString("\n")
			}
			owner = p.OwnerName
			b.WriteString(owner + ":\n")
		}
		fmt.Fprintf(b, "  - %s: Qty=%s, Avg Price=%s [%d]\n", p.Symbol, p.Quantity.String(), p.AvgPrice.String(), p.ID)
	}
	b.WriteString("\n")
}

// Chunk splits a message into pieces that fit the Telegram limit.
func Chunk(msg string, size int) []string {
	if size <= 0 {
		size = MaxMessageLen
	}
	runes := []rune(msg)
	if len(runes) <= size {
		return []string{msg}
	}
	chunks := make([]string, 0, len(runes)/size+1)
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func Help() string {
	return strings.TrimSpace(`
📘 Quick Guide

Trades
- Add: /tadd SYMBOL AMOUNT
- Edit: /tedit ID NEW_AMOUNT
- Delete: /tdel ID
- List: /tlist [--user me|NAME] [--symbol SYM] [--from YYYY-MM-DD] [--to YYYY-MM-DD]
- Export: /texport [same filters as /tlist]

Positions
- Add: /padd SYMBOL QTY AVG_PRICE
- Edit: /pedit ID NEW_QTY NEW_AVG_PRICE
- Delete: /pdel ID [ID ...]
- List: /plist [--user me|NAME]
- Summary: /pall
- Export: /pexport [--user me|NAME]

Recaps
- /rc daily|weekly|monthly
- /wd (weekly), /mo (monthly)

Stats
- /lb — Leaderboard
- /s SYMBOL — Stock view
- /me — My stats

Signals
- /set_signal SYMBOL ENTRY [NOTE]

Admin
- /admin_trade_add USER SYMBOL AMOUNT
- /admin_pos_add USER SYMBOL QTY AVG_PRICE

Tips
- Numbers can use +/- and commas, e.g. +1,250,000
- Trade AMOUNT is per-trade P/L
`)
}
