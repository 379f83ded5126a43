package contract

import (
	"context"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/repository/specification"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	DeleteBySession(ctx context.Context, sessionId string) error
}
