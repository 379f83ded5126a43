package model

import (
	"time"

	"gorm.io/datatypes"
)

type CartOperation struct {
	UserId    string                      `gorm:"type:varchar(64);primaryKey"`
	Token     string                      `gorm:"type:varchar(160);primaryKey"`
	Message   string                      `gorm:"type:text;not null"`
	Missing   datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt time.Time                   `gorm:"autoCreateTime;index"`
}

func (CartOperation) TableName() string {
	return "cart_operations"
}
