package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one persisted exchange of a shopping conversation.
type ChatTurn struct {
	Id         uuid.UUID
	SessionId  string
	UserId     string
	StepNumber int
	Role       string // "user" or "assistant"
	Text       string
	Category   string
	Step       string
	CreatedAt  time.Time
}
