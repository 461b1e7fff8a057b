package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/models"
	"ledgerbot/internal/repository"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(raw string) (Period, bool) {
	switch Period(raw) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(raw), true
	}
	return "", false
}

// OwnerGroup is one owner's slice of a recap, in listing order.
type OwnerGroup struct {
	Owner    string
	Trades   []models.TradeLog
	Subtotal decimal.Decimal
}

type Recap struct {
	Period Period
	Date   string
	Start  string
	Owners []OwnerGroup
	Total  decimal.Decimal
}

// periodStart computes the inclusive window start: daily = today,
// weekly = today minus seven days, monthly = first of the month.
func (s *Service) periodStart(period Period) string {
	now := s.nowLocal()
	switch period {
	case PeriodDaily:
		return now.Format("2006-01-02")
	case PeriodWeekly:
		return now.AddDate(0, 0, -7).Format("2006-01-02")
	default:
		return now.AddDate(0, 0, 1-now.Day()).Format("2006-01-02")
	}
}

func (s *Service) Recap(ctx context.Context, period Period) (*Recap, error) {
	start := s.periodStart(period)
	items, err := s.Repo.ListTradeLogs(ctx, repository.ListTradeLogsParams{DateFrom: &start})
	if err != nil {
		return nil, err
	}
	owners, total := groupTrades(items)
	return &Recap{
		Period: period,
		Date:   s.Today(),
		Start:  start,
		Owners: owners,
		Total:  total,
	}, nil
}

// GroupTrades groups an already-ordered listing by owner, preserving
// first-seen owner order. The group total always equals the sum of the
// per-owner subtotals.
func GroupTrades(items []models.TradeLog) ([]OwnerGroup, decimal.Decimal) {
	return groupTrades(items)
}

func groupTrades(items []models.TradeLog) ([]OwnerGroup, decimal.Decimal) {
	index := map[string]int{}
	groups := make([]OwnerGroup, 0, 8)
	total := decimal.Zero
	for _, item := range items {
		i, ok := index[item.OwnerName]
		if !ok {
			i = len(groups)
			index[item.OwnerName] = i
			groups = append(groups, OwnerGroup{Owner: item.OwnerName, Subtotal: decimal.Zero})
		}
		groups[i].Trades = append(groups[i].Trades, item)
		groups[i].Subtotal = groups[i].Subtotal.Add(item.Amount)
		total = total.Add(item.Amount)
	}
	return groups, total
}

type LeaderboardRow struct {
	Owner string
	Total decimal.Decimal
}

// Leaderboard ranks this month's signed totals per owner, descending.
// Ties keep first-seen owner order (stable sort).
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	start := s.periodStart(PeriodMonthly)
	items, err := s.Repo.ListTradeLogs(ctx, repository.ListTradeLogsParams{DateFrom: &start})
	if err != nil {
		return nil, err
	}
	groups, _ := groupTrades(items)
	rows := make([]LeaderboardRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, LeaderboardRow{Owner: g.Owner, Total: g.Subtotal})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows, nil
}

type SymbolReport struct {
	Symbol string
	Owners []OwnerGroup
	Net    decimal.Decimal
}

// SymbolView aggregates every trade for one symbol, all time.
func (s *Service) SymbolView(ctx context.Context, rawSymbol string) (*SymbolReport, error) {
	symbol, err := normalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListTradeLogs(ctx, repository.ListTradeLogsParams{Symbol: &symbol})
	if err != nil {
		return nil, err
	}
	owners, net := groupTrades(items)
	return &SymbolReport{Symbol: symbol, Owners: owners, Net: net}, nil
}

type SymbolTotal struct {
	Symbol string
	Total  decimal.Decimal
}

type UserStats struct {
	User    string
	Month   string
	Symbols []SymbolTotal
	Total   decimal.Decimal
}

// UserMonthlyStats sums this month's trades for one actor per symbol.
func (s *Service) UserMonthlyStats(ctx context.Context, actor Actor) (*UserStats, error) {
	start := s.periodStart(PeriodMonthly)
	params := repository.ListTradeLogsParams{DateFrom: &start}
	params.Owner = &actor.DisplayName
	if actor.Key != "" {
		params.OwnerKey = &actor.Key
	}
	items, err := s.Repo.ListTradeLogs(ctx, params)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	symbols := make([]SymbolTotal, 0, 8)
	total := decimal.Zero
	for _, item := range items {
		i, ok := index[item.Symbol]
		if !ok {
			i = len(symbols)
			index[item.Symbol] = i
			symbols = append(symbols, SymbolTotal{Symbol: item.Symbol, Total: decimal.Zero})
		}
		symbols[i].Total = symbols[i].Total.Add(item.Amount)
		total = total.Add(item.Amount)
	}
	return &UserStats{
		User:    actor.DisplayName,
		Month:   s.nowLocal().Format("Jan 2006"),
		Symbols: symbols,
		Total:   total,
	}, nil
}

type OwnerPositions struct {
	Owner     string
	Positions []models.Position
}

type SymbolPositionTotal struct {
	Symbol   string
	TotalQty decimal.Decimal
	AvgPrice decimal.Decimal
}

type PositionSummary struct {
	Owners  []OwnerPositions
	Symbols []SymbolPositionTotal
}

// PositionSummaryAll groups every position by owner and accumulates
// per-symbol total quantity with a quantity-weighted average price.
// A symbol with zero total quantity reports a zero average price.
func (s *Service) PositionSummaryAll(ctx context.Context) (*PositionSummary, error) {
	items, err := s.Repo.ListPositions(ctx, repository.ListPositionsParams{})
	if err != nil {
		return nil, err
	}
	ownerIndex := map[string]int{}
	owners := make([]OwnerPositions, 0, 8)
	symbolIndex := map[string]int{}
	type symbolAcc struct {
		qty    decimal.Decimal
		amount decimal.Decimal
	}
	accs := make([]symbolAcc, 0, 8)
	symbolOrder := make([]string, 0, 8)
	for _, item := range items {
		i, ok := ownerIndex[item.OwnerName]
		if !ok {
			i = len(owners)
			ownerIndex[item.OwnerName] = i
			owners = append(owners, OwnerPositions{Owner: item.OwnerName})
		}
		owners[i].Positions = append(owners[i].Positions, item)

		j, ok := symbolIndex[item.Symbol]
		if !ok {
			j = len(accs)
			symbolIndex[item.Symbol] = j
			accs = append(accs, symbolAcc{qty: decimal.Zero, amount: decimal.Zero})
			symbolOrder = append(symbolOrder, item.Symbol)
		}
		accs[j].qty = accs[j].qty.Add(item.Quantity)
		accs[j].amount = accs[j].amount.Add(item.Quantity.Mul(item.AvgPrice))
	}
	symbols := make([]SymbolPositionTotal, 0, len(accs))
	for j, acc := range accs {
		avg := decimal.Zero
		if !acc.qty.IsZero() {
			avg = acc.amount.Div(acc.qty)
		}
		symbols = append(symbols, SymbolPositionTotal{
			Symbol:   symbolOrder[j],
			TotalQty: acc.qty,
			AvgPrice: avg,
		})
	}
	return &PositionSummary{Owners: owners, Symbols: symbols}, nil
}
