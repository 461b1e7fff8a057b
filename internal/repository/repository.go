package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/models"
)

// ListTradeLogsParams filters trade listings. Owner matches the stored
// display name and OwnerKey the stable handle; when both are set a row
// matches if either matches (two-tier ownership lookup). Dates are
// inclusive YYYY-MM-DD bounds.
type ListTradeLogsParams struct {
	Owner    *string
	OwnerKey *string
	Symbol   *string
	DateFrom *string
	DateTo   *string
}

type ListPositionsParams struct {
	Owner    *string
	OwnerKey *string
	Symbol   *string
}

type Repository interface {
	InsertTradeLog(ctx context.Context, item *models.TradeLog) error
	GetTradeLogByID(ctx context.Context, id uint64) (*models.TradeLog, error)
	UpdateTradeLogAmount(ctx context.Context, id uint64, amount decimal.Decimal) error
	DeleteTradeLog(ctx context.Context, id uint64) error
	// ListTradeLogs returns matches ordered by trade date descending then
	// id descending.
	ListTradeLogs(ctx context.Context, params ListTradeLogsParams) ([]models.TradeLog, error)

	InsertPosition(ctx context.Context, item *models.Position) error
	GetPositionByID(ctx context.Context, id uint64) (*models.Position, error)
	UpdatePositionHolding(ctx context.Context, id uint64, quantity, avgPrice decimal.Decimal, updatedAt time.Time) error
	DeletePosition(ctx context.Context, id uint64) error
	// ListPositions returns matches ordered by owner name ascending then
	// id ascending.
	ListPositions(ctx context.Context, params ListPositionsParams) ([]models.Position, error)

	InsertSignalDispatch(ctx context.Context, item *models.SignalDispatch) error
	ListSignalDispatches(ctx context.Context, limit int) ([]models.SignalDispatch, error)
}
