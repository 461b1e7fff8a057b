package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledgerbot/internal/models"
	"ledgerbot/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- trade logs -------------------------------------------------------------

func (s *Store) InsertTradeLog(ctx context.Context, item *models.TradeLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetTradeLogByID(ctx context.Context, id uint64) (*models.TradeLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.TradeLog
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateTradeLogAmount(ctx context.Context, id uint64, amount decimal.Decimal) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.TradeLog{}).
		Where("id = ?", id).
		Update("amount", amount).Error
}

func (s *Store) DeleteTradeLog(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.TradeLog{}, "id = ?", id).Error
}

func (s *Store) ListTradeLogs(ctx context.Context, params repository.ListTradeLogsParams) ([]models.TradeLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.TradeLog{})
	query = applyOwnerFilter(query, params.Owner, params.OwnerKey)
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.ToUpper(strings.TrimSpace(*params.Symbol)))
	}
	if params.DateFrom != nil && *params.DateFrom != "" {
		query = query.Where("trade_date >= ?", *params.DateFrom)
	}
	if params.DateTo != nil && *params.DateTo != "" {
		query = query.Where("trade_date <= ?", *params.DateTo)
	}
	var items []models.TradeLog
	if err := query.Order("trade_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- positions --------------------------------------------------------------

func (s *Store) InsertPosition(ctx context.Context, item *models.Position) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetPositionByID(ctx context.Context, id uint64) (*models.Position, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Position
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdatePositionHolding(ctx context.Context, id uint64, quantity, avgPrice decimal.Decimal, updatedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   quantity,
			"avg_price":  avgPrice,
			"updated_at": updatedAt,
		}).Error
}

func (s *Store) DeletePosition(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Position{}, "id = ?", id).Error
}

func (s *Store) ListPositions(ctx context.Context, params repository.ListPositionsParams) ([]models.Position, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Position{})
	query = applyOwnerFilter(query, params.Owner, params.OwnerKey)
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.ToUpper(strings.TrimSpace(*params.Symbol)))
	}
	var items []models.Position
	if err := query.Order("owner_name asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- signal dispatches ------------------------------------------------------

func (s *Store) InsertSignalDispatch(ctx context.Context, item *models.SignalDispatch) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSignalDispatches(ctx context.Context, limit int) ([]models.SignalDispatch, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var items []models.SignalDispatch
	if err := s.db.WithContext(ctx).
		Model(&models.SignalDispatch{}).
		Order("id desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// applyOwnerFilter implements the two-tier ownership lookup: a row matches
// on display name or, for rows that carry one, on the stable handle key.
func applyOwnerFilter(query *gorm.DB, owner, ownerKey *string) *gorm.DB {
	name := ""
	if owner != nil {
		name = strings.TrimSpace(*owner)
	}
	key := ""
	if ownerKey != nil {
		key = strings.ToLower(strings.TrimSpace(*ownerKey))
	}
	switch {
	case name != "" && key != "":
		return query.Where("owner_name = ? OR owner_key = ?", name, key)
	case name != "":
		return query.Where("owner_name = ?", name)
	case key != "":
		return query.Where("owner_key = ?", key)
	}
	return query
}
