package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a swing-trade holding logged by a group member.
type Position struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OwnerName string `gorm:"type:varchar(100);not null;index"`
	OwnerKey  string `gorm:"type:varchar(100);index"`

	Symbol   string          `gorm:"type:varchar(20);not null;index"`
	Quantity decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	AvgPrice decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
