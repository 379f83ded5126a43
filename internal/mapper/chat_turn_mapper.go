package mapper

import (
	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/model"
)

type ChatTurnMapper struct{}

func NewChatTurnMapper() *ChatTurnMapper {
	return &ChatTurnMapper{}
}

func (m *ChatTurnMapper) ToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	return &entity.ChatTurn{
		Id:         t.Id,
		SessionId:  t.SessionId,
		UserId:     t.UserId,
		StepNumber: t.StepNumber,
		Role:       t.Role,
		Text:       t.Text,
		Category:   t.Category,
		Step:       t.Step,
		CreatedAt:  t.CreatedAt,
	}
}

func (m *ChatTurnMapper) ToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	return &model.ChatTurn{
		Id:         t.Id,
		SessionId:  t.SessionId,
		UserId:     t.UserId,
		StepNumber: t.StepNumber,
		Role:       t.Role,
		Text:       t.Text,
		Category:   t.Category,
		Step:       t.Step,
		CreatedAt:  t.CreatedAt,
	}
}

func (m *ChatTurnMapper) ToEntities(turns []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
