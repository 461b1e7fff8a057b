package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/models"
	"ledgerbot/internal/repository"
)

// Actor identifies the user behind a command. Key is the stable ownership
// handle (lowercased Telegram username); when the user has no handle it
// falls back to the display name, matching how rows are stored.
type Actor struct {
	DisplayName string
	Handle      string
	Key         string
}

// NewActor derives the ownership key from a handle, falling back to the
// display name for users without one.
func NewActor(displayName, handle string) Actor {
	key := strings.ToLower(strings.TrimSpace(handle))
	if key == "" {
		key = displayName
	}
	return Actor{DisplayName: displayName, Handle: handle, Key: key}
}

// Service owns the trade-log and position collections. All mutations go
// through the ownership check; aggregation views are read-only.
type Service struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Admins []string
	Loc    *time.Location

	// now is a test hook; defaults to time.Now.
	now func() time.Time
}

func (s *Service) nowLocal() time.Time {
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	if s.Loc != nil {
		return now.In(s.Loc)
	}
	return now
}

// Today returns the current calendar date in the bot timezone.
func (s *Service) Today() string {
	return s.nowLocal().Format("2006-01-02")
}

func (s *Service) IsAdmin(actor Actor) bool {
	if actor.Handle == "" {
		return false
	}
	for _, admin := range s.Admins {
		if strings.EqualFold(admin, actor.Handle) {
			return true
		}
	}
	return false
}

// canMutate is the ownership rule: display-name equality (backward
// compatible with rows created before stable keys existed), stable-key
// equality for rows that have one, or admin bypass.
func (s *Service) canMutate(actor Actor, ownerName, ownerKey string) bool {
	if ownerName != "" && actor.DisplayName == ownerName {
		return true
	}
	if ownerKey != "" && actor.Key != "" && strings.EqualFold(actor.Key, ownerKey) {
		return true
	}
	return s.IsAdmin(actor)
}

// ParseAmount accepts signed numbers with comma separators, e.g. +1,250,000.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, validationf("Amount must be a number")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, validationf("Amount must be a number")
	}
	return d, nil
}

func normalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", validationf("Symbol is required")
	}
	return symbol, nil
}

// --- trades -----------------------------------------------------------------

func (s *Service) AddTrade(ctx context.Context, actor Actor, rawSymbol, rawAmount string) (*models.TradeLog, error) {
	symbol, err := normalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	item := &models.TradeLog{
		OwnerName: actor.DisplayName,
		OwnerKey:  actor.Key,
		Symbol:    symbol,
		Amount:    amount,
		TradeDate: s.Today(),
	}
	if err := s.Repo.InsertTradeLog(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AdminAddTrade logs a trade on behalf of a named user. Rows created this
// way only carry the key when the target was given as a handle.
func (s *Service) AdminAddTrade(ctx context.Context, actor Actor, targetUser, rawSymbol, rawAmount string) (*models.TradeLog, error) {
	if !s.IsAdmin(actor) {
		return nil, ErrForbidden
	}
	name, key := splitTargetUser(targetUser)
	if name == "" {
		return nil, validationf("User is required")
	}
	symbol, err := normalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	item := &models.TradeLog{
		OwnerName: name,
		OwnerKey:  key,
		Symbol:    symbol,
		Amount:    amount,
		TradeDate: s.Today(),
	}
	if err := s.Repo.InsertTradeLog(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) EditTrade(ctx context.Context, actor Actor, id uint64, rawAmount string) (*models.TradeLog, error) {
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	item, err := s.Repo.GetTradeLogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !s.canMutate(actor, item.OwnerName, item.OwnerKey) {
		return nil, ErrForbidden
	}
	if err := s.Repo.UpdateTradeLogAmount(ctx, id, amount); err != nil {
		return nil, err
	}
	item.Amount = amount
	return item, nil
}

func (s *Service) DeleteTrade(ctx context.Context, actor Actor, id uint64) error {
	item, err := s.Repo.GetTradeLogByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if !s.canMutate(actor, item.OwnerName, item.OwnerKey) {
		return ErrForbidden
	}
	return s.Repo.DeleteTradeLog(ctx, id)
}

// TradeFilter is the user-level listing filter. User may be a display name
// or an @handle; "me" is resolved by the transport into User+UserKey so the
// caller's legacy rows (display name) and keyed rows both match.
type TradeFilter struct {
	User    string
	UserKey string
	Symbol  string
	From    string
	To      string
}

func (s *Service) ListTrades(ctx context.Context, filter TradeFilter) ([]models.TradeLog, error) {
	params := repository.ListTradeLogsParams{}
	if user := strings.TrimSpace(filter.User); user != "" {
		name, key := splitTargetUser(user)
		if filter.UserKey != "" {
			key = strings.ToLower(filter.UserKey)
		}
		params.Owner = &name
		if key != "" {
			params.OwnerKey = &key
		}
	}
	if symbol := strings.TrimSpace(filter.Symbol); symbol != "" {
		params.Symbol = &symbol
	}
	for _, bound := range []struct {
		raw string
		dst **string
	}{{filter.From, &params.DateFrom}, {filter.To, &params.DateTo}} {
		raw := strings.TrimSpace(bound.raw)
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil, validationf("Dates must be YYYY-MM-DD")
		}
		value := raw
		*bound.dst = &value
	}
	return s.Repo.ListTradeLogs(ctx, params)
}

// --- positions --------------------------------------------------------------

func (s *Service) AddPosition(ctx context.Context, actor Actor, rawSymbol, rawQty, rawAvgPrice string) (*models.Position, error) {
	symbol, err := normalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	quantity, avgPrice, err := parseHolding(rawQty, rawAvgPrice)
	if err != nil {
		return nil, err
	}
	item := &models.Position{
		OwnerName: actor.DisplayName,
		OwnerKey:  actor.Key,
		Symbol:    symbol,
		Quantity:  quantity,
		AvgPrice:  avgPrice,
	}
	if err := s.Repo.InsertPosition(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) AdminAddPosition(ctx context.Context, actor Actor, targetUser, rawSymbol, rawQty, rawAvgPrice string) (*models.Position, error) {
	if !s.IsAdmin(actor) {
		return nil, ErrForbidden
	}
	name, key := splitTargetUser(targetUser)
	if name == "" {
		return nil, validationf("User is required")
	}
	symbol, err := normalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	quantity, avgPrice, err := parseHolding(rawQty, rawAvgPrice)
	if err != nil {
		return nil, err
	}
	item := &models.Position{
		OwnerName: name,
		OwnerKey:  key,
		Symbol:    symbol,
		Quantity:  quantity,
		AvgPrice:  avgPrice,
	}
	if err := s.Repo.InsertPosition(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) EditPosition(ctx context.Context, actor Actor, id uint64, rawQty, rawAvgPrice string) (*models.Position, error) {
	quantity, avgPrice, err := parseHolding(rawQty, rawAvgPrice)
	if err != nil {
		return nil, err
	}
	item, err := s.Repo.GetPositionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !s.canMutate(actor, item.OwnerName, item.OwnerKey) {
		return nil, ErrForbidden
	}
	now := s.nowLocal()
	if err := s.Repo.UpdatePositionHolding(ctx, id, quantity, avgPrice, now); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	item.AvgPrice = avgPrice
	item.UpdatedAt = now
	return item, nil
}

// DeleteOutcome reports the result for one id of a batch delete.
type DeleteOutcome struct {
	ID  uint64
	Err error
}

// DeletePositions authorizes and deletes each id independently; a failure
// on one id never aborts the rest of the batch.
func (s *Service) DeletePositions(ctx context.Context, actor Actor, ids []uint64) []DeleteOutcome {
	outcomes := make([]DeleteOutcome, 0, len(ids))
	for _, id := range ids {
		outcomes = append(outcomes, DeleteOutcome{ID: id, Err: s.deletePosition(ctx, actor, id)})
	}
	return outcomes
}

func (s *Service) deletePosition(ctx context.Context, actor Actor, id uint64) error {
	item, err := s.Repo.GetPositionByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if !s.canMutate(actor, item.OwnerName, item.OwnerKey) {
		return ErrForbidden
	}
	return s.Repo.DeletePosition(ctx, id)
}

type PositionFilter struct {
	User    string
	UserKey string
	Symbol  string
}

func (s *Service) ListPositions(ctx context.Context, filter PositionFilter) ([]models.Position, error) {
	params := repository.ListPositionsParams{}
	if user := strings.TrimSpace(filter.User); user != "" {
		name, key := splitTargetUser(user)
		if filter.UserKey != "" {
			key = strings.ToLower(filter.UserKey)
		}
		params.Owner = &name
		if key != "" {
			params.OwnerKey = &key
		}
	}
	if symbol := strings.TrimSpace(filter.Symbol); symbol != "" {
		params.Symbol = &symbol
	}
	return s.Repo.ListPositions(ctx, params)
}

// splitTargetUser interprets a user argument: "@handle" yields both a
// display form and a key, a bare name matches display names only.
func splitTargetUser(raw string) (name, key string) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "@") {
		trimmed := strings.TrimPrefix(raw, "@")
		return trimmed, strings.ToLower(trimmed)
	}
	return raw, ""
}

func parseHolding(rawQty, rawAvgPrice string) (quantity, avgPrice decimal.Decimal, err error) {
	quantity, qerr := ParseAmount(rawQty)
	avgPrice, perr := ParseAmount(rawAvgPrice)
	if qerr != nil || perr != nil {
		return decimal.Decimal{}, decimal.Decimal{}, validationf("Quantity and Avg Price must be numbers")
	}
	return quantity, avgPrice, nil
}
