package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/models"
	"ledgerbot/internal/repository"
)

// stubRepo is an in-memory Repository with the same ordering and filter
// semantics as the gorm store.
type stubRepo struct {
	trades     []models.TradeLog
	positions  []models.Position
	dispatches []models.SignalDispatch
	nextID     uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{nextID: 1}
}

func (r *stubRepo) id() uint64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *stubRepo) InsertTradeLog(_ context.Context, item *models.TradeLog) error {
	item.ID = r.id()
	item.CreatedAt = time.Now()
	r.trades = append(r.trades, *item)
	return nil
}

func (r *stubRepo) GetTradeLogByID(_ context.Context, id uint64) (*models.TradeLog, error) {
	for _, t := range r.trades {
		if t.ID == id {
			copied := t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) UpdateTradeLogAmount(_ context.Context, id uint64, amount decimal.Decimal) error {
	for i := range r.trades {
		if r.trades[i].ID == id {
			r.trades[i].Amount = amount
			return nil
		}
	}
	return nil
}

func (r *stubRepo) DeleteTradeLog(_ context.Context, id uint64) error {
	for i := range r.trades {
		if r.trades[i].ID == id {
			r.trades = append(r.trades[:i], r.trades[i+1:]...)
			return nil
		}
	}
	return nil
}

func ownerMatches(owner, ownerKey *string, name, key string) bool {
	if owner == nil && ownerKey == nil {
		return true
	}
	if owner != nil && name == *owner {
		return true
	}
	if ownerKey != nil && key == *ownerKey {
		return true
	}
	return false
}

func (r *stubRepo) ListTradeLogs(_ context.Context, params repository.ListTradeLogsParams) ([]models.TradeLog, error) {
	out := make([]models.TradeLog, 0, len(r.trades))
	for _, t := range r.trades {
		if !ownerMatches(params.Owner, params.OwnerKey, t.OwnerName, t.OwnerKey) {
			continue
		}
		if params.Symbol != nil && t.Symbol != *params.Symbol {
			continue
		}
		if params.DateFrom != nil && t.TradeDate < *params.DateFrom {
			continue
		}
		if params.DateTo != nil && t.TradeDate > *params.DateTo {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TradeDate != out[j].TradeDate {
			return out[i].TradeDate > out[j].TradeDate
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *stubRepo) InsertPosition(_ context.Context, item *models.Position) error {
	item.ID = r.id()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.positions = append(r.positions, *item)
	return nil
}

func (r *stubRepo) GetPositionByID(_ context.Context, id uint64) (*models.Position, error) {
	for _, p := range r.positions {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) UpdatePositionHolding(_ context.Context, id uint64, quantity, avgPrice decimal.Decimal, updatedAt time.Time) error {
	for i := range r.positions {
		if r.positions[i].ID == id {
			r.positions[i].Quantity = quantity
			r.positions[i].AvgPrice = avgPrice
			r.positions[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return nil
}

func (r *stubRepo) DeletePosition(_ context.Context, id uint64) error {
	for i := range r.positions {
		if r.positions[i].ID == id {
			r.positions = append(r.positions[:i], r.positions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubRepo) ListPositions(_ context.Context, params repository.ListPositionsParams) ([]models.Position, error) {
	out := make([]models.Position, 0, len(r.positions))
	for _, p := range r.positions {
		if !ownerMatches(params.Owner, params.OwnerKey, p.OwnerName, p.OwnerKey) {
			continue
		}
		if params.Symbol != nil && p.Symbol != *params.Symbol {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OwnerName != out[j].OwnerName {
			return out[i].OwnerName < out[j].OwnerName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *stubRepo) InsertSignalDispatch(_ context.Context, item *models.SignalDispatch) error {
	item.ID = r.id()
	item.CreatedAt = time.Now()
	r.dispatches = append(r.dispatches, *item)
	return nil
}

func (r *stubRepo) ListSignalDispatches(_ context.Context, limit int) ([]models.SignalDispatch, error) {
	out := make([]models.SignalDispatch, len(r.dispatches))
	copy(out, r.dispatches)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(repo repository.Repository, admins ...string) *Service {
	return &Service{
		Repo:   repo,
		Admins: admins,
		Loc:    time.UTC,
	}
}
