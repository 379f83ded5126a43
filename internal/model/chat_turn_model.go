package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  string    `gorm:"type:varchar(64);not null;index:idx_chat_turns_session,priority:1"`
	UserId     string    `gorm:"type:varchar(64);not null;index"`
	StepNumber int       `gorm:"not null;index:idx_chat_turns_session,priority:2"`
	Role       string    `gorm:"type:varchar(16);not null"`
	Text       string    `gorm:"type:text"`
	Category   string    `gorm:"type:varchar(64)"`
	Step       string    `gorm:"type:varchar(64)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}

// All lists the models migrated by cmd/seed and the integration tests.
func All() []interface{} {
	return []interface{}{
		&Product{},
		&Recipe{},
		&Promotion{},
		&UserProfile{},
		&CartItem{},
		&CartOperation{},
		&ChatTurn{},
	}
}
