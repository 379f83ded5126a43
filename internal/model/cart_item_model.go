package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	UserId    string          `gorm:"type:varchar(64);primaryKey"`
	ItemId    string          `gorm:"type:varchar(32);primaryKey"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	Position  int             `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
