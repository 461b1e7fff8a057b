package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeLog is a single day-trade P/L entry logged by a group member.
// OwnerKey is the stable ownership handle; rows created before handles
// existed (or added by admins on behalf of someone) carry an empty key and
// are matched by display name only.
type TradeLog struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OwnerName string `gorm:"type:varchar(100);not null;index"`
	OwnerKey  string `gorm:"type:varchar(100);index"`

	Symbol string          `gorm:"type:varchar(20);not null;index"`
	Amount decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	// Local calendar date (YYYY-MM-DD) in the bot timezone, immutable.
	TradeDate string `gorm:"type:varchar(10);not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (TradeLog) TableName() string {
	return "trade_logs"
}
