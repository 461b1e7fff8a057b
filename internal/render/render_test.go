package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/ledger"
	"ledgerbot/internal/models"
)

func TestAmountFormatting(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1_250_000, "+1,250,000 📈"},
		{-2_000_000, "-2,000,000 📉"},
		{0, "+0 ➖"},
		{999, "+999 📈"},
		{1_000, "+1,000 📈"},
	}
	for _, tc := range cases {
		if got := Amount(decimal.NewFromInt(tc.in)); got != tc.want {
			t.Fatalf("Amount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSignedRoundsToWholeUnits(t *testing.T) {
	d, _ := decimal.NewFromString("1250000.4")
	if got := Signed(d); got != "+1,250,000" {
		t.Fatalf("Signed = %q", got)
	}
}

func TestPriceTwoDecimals(t *testing.T) {
	if got := Price(decimal.NewFromInt(175)); got != "175.00" {
		t.Fatalf("Price = %q, want 175.00", got)
	}
	d, _ := decimal.NewFromString("4512.5")
	if got := Price(d); got != "4512.50" {
		t.Fatalf("Price = %q, want 4512.50", got)
	}
}

func TestTradeListCapsRowsPerOwner(t *testing.T) {
	trades := make([]models.TradeLog, 0, 60)
	total := decimal.Zero
	for i := 0; i < 60; i++ {
		amount := decimal.NewFromInt(int64(i + 1))
		trades = append(trades, models.TradeLog{
			ID:        uint64(i + 1),
			OwnerName: "Budi",
			Symbol:    "BBRI",
			TradeDate: "2026-08-14",
			Amount:    amount,
		})
		total = total.Add(amount)
	}
	groups, _ := ledger.GroupTrades(trades)

	out := TradeList(groups, total)
	if !strings.Contains(out, "... and 10 more") {
		t.Fatalf("missing cap marker:\n%s", out)
	}
	if strings.Count(out, "[") != 50 {
		t.Fatalf("printed %d rows, want 50", strings.Count(out, "["))
	}
	// Totals cover the full listing, not the visible cap.
	if !strings.Contains(out, "💰 Group Total: +1,830 ✅") {
		t.Fatalf("missing full total:\n%s", out)
	}
}

func TestTradeListEmpty(t *testing.T) {
	out := TradeList(nil, decimal.Zero)
	if out != "📊 No trades found for given filters." {
		t.Fatalf("empty listing = %q", out)
	}
}

func TestDailyRecapLayout(t *testing.T) {
	recap := &ledger.Recap{
		Period: ledger.PeriodDaily,
		Date:   "2026-08-14",
		Owners: []ledger.OwnerGroup{
			{
				Owner: "Budi",
				Trades: []models.TradeLog{
					{Symbol: "BBRI", Amount: decimal.NewFromInt(1_250_000)},
					{Symbol: "TLKM", Amount: decimal.NewFromInt(-2_000_000)},
				},
				Subtotal: decimal.NewFromInt(-750_000),
			},
		},
		Total: decimal.NewFromInt(-750_000),
	}
	out := DailyRecap(recap)
	for _, want := range []string{
		"📊 Daily Recap — 2026-08-14",
		"Budi:",
		"  - BBRI: +1,250,000 📈",
		"  - TLKM: -2,000,000 📉",
		"💰 Group Total: -750,000 ❌",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLeaderboardMedals(t *testing.T) {
	rows := []ledger.LeaderboardRow{
		{Owner: "Eka", Total: decimal.NewFromInt(900)},
		{Owner: "Sari", Total: decimal.NewFromInt(500)},
		{Owner: "Budi", Total: decimal.NewFromInt(100)},
		{Owner: "Dewi", Total: decimal.NewFromInt(-50)},
	}
	out := Leaderboard(rows)
	for _, want := range []string{
		"🥇 Eka: +900 📈",
		"🥈 Sari: +500 📈",
		"🥉 Budi: +100 📈",
		"4. Dewi: -50 📉",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPositionSummaryLayout(t *testing.T) {
	summary := &ledger.PositionSummary{
		Owners: []ledger.OwnerPositions{
			{
				Owner: "Budi",
				Positions: []models.Position{
					{ID: 1, OwnerName: "Budi", Symbol: "BBRI", Quantity: decimal.NewFromInt(10), AvgPrice: decimal.NewFromInt(100)},
				},
			},
		},
		Symbols: []ledger.SymbolPositionTotal{
			{Symbol: "BBRI", TotalQty: decimal.NewFromInt(40), AvgPrice: decimal.NewFromInt(175)},
		},
	}
	out := PositionSummary(summary)
	for _, want := range []string{
		"📊 All Positions:",
		"Budi:",
		"  - BBRI: Qty=10, Avg Price=100 [1]",
		"🧮 Group Stock Totals:",
		"BBRI: Total Qty=40, Group Avg Price=175.00",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestChunkRespectsRunes(t *testing.T) {
	msg := strings.Repeat("📈", 10)
	chunks := Chunk(msg, 4)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	var rebuilt strings.Builder
	for i, c := range chunks {
		if !strings.HasPrefix(c, "📈") {
			t.Fatalf("chunk %d split an emoji: %q", i, c)
		}
		rebuilt.WriteString(c)
	}
	if rebuilt.String() != msg {
		t.Fatalf("chunks do not reassemble the message")
	}
}

func TestChunkShortMessagePassesThrough(t *testing.T) {
	msg := fmt.Sprintf("short %d", 1)
	chunks := Chunk(msg, MaxMessageLen)
	if len(chunks) != 1 || chunks[0] != msg {
		t.Fatalf("chunks = %v", chunks)
	}
}
