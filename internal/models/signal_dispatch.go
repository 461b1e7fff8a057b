package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SignalDispatch records one attempt to forward a signal to the Wiguna
// recommendation API, with the upstream response kept for review.
type SignalDispatch struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Symbol    string          `gorm:"type:varchar(20);not null;index"`
	Entry     decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	Note      string          `gorm:"type:text"`
	Requester string          `gorm:"type:varchar(100);index"`

	Success  bool           `gorm:"not null;default:false"`
	Status   int            `gorm:"not null;default:0"`
	Response datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (SignalDispatch) TableName() string {
	return "signal_dispatches"
}
