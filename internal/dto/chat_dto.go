package dto

import (
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/store"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	SessionId string `json:"session_id,omitempty" validate:"omitempty,max=64"`
	UserId    string `json:"user_id,omitempty" validate:"omitempty,max=64"`
	Text      string `json:"text" validate:"max=2000"`
	Confirm   *bool  `json:"confirm,omitempty"`
	Rating    *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type SessionResponse struct {
	Id              string          `json:"id"`
	UserId          string          `json:"user_id"`
	Step            string          `json:"step"`
	StepNumber      int             `json:"step_number"`
	Category        string          `json:"category,omitempty"`
	CompletedStages []string        `json:"completed_stages"`
	Artifacts       store.Artifacts `json:"artifacts"`
	Feedback        store.Feedback  `json:"feedback"`
	CreatedAt       time.Time       `json:"created_at"`
	LastUpdatedAt   time.Time       `json:"last_updated_at"`
}

type ChatTurnResponse struct {
	Id         uuid.UUID `json:"id"`
	StepNumber int       `json:"step_number"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	Category   string    `json:"category,omitempty"`
	Step       string    `json:"step,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CartResponse struct {
	UserId    string            `json:"user_id"`
	Items     []entity.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Total     string            `json:"total"`
}
