package service

import (
	"context"
	"fmt"
	"time"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/specification"
	"smart-grocery-be/internal/repository/unitofwork"
	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"github.com/google/uuid"
)

var ErrUserRequired = fmt.Errorf("%w: user id is required", orchestrator.ErrInvalidMessage)

type IAssistantService interface {
	SendMessage(ctx context.Context, userId string, req *dto.SendMessageRequest) (*orchestrator.Response, error)
	GetSession(ctx context.Context, userId, sessionId string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId string) error
	GetHistory(ctx context.Context, userId, sessionId string) ([]dto.ChatTurnResponse, error)
	GetCart(ctx context.Context, userId string) (*dto.CartResponse, error)
}

type assistantService struct {
	orchestrator *orchestrator.Orchestrator
	catalog      stage.Catalog
	carts        stage.CartRepository
	uowFactory   unitofwork.RepositoryFactory // optional; history is not kept without it
	logger       logger.ILogger
	now          func() time.Time
}

func NewAssistantService(
	orch *orchestrator.Orchestrator,
	catalog stage.Catalog,
	carts stage.CartRepository,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		orchestrator: orch,
		catalog:      catalog,
		carts:        carts,
		uowFactory:   uowFactory,
		logger:       log,
		now:          time.Now,
	}
}

func (s *assistantService) SendMessage(ctx context.Context, userId string, req *dto.SendMessageRequest) (*orchestrator.Response, error) {
	if userId == "" {
		return nil, ErrUserRequired
	}

	resp, err := s.orchestrator.AdvanceTurn(ctx, orchestrator.Message{
		SessionID: req.SessionId,
		UserID:    userId,
		Text:      req.Text,
		Confirm:   req.Confirm,
		Rating:    req.Rating,
	})
	if err != nil {
		return nil, err
	}

	s.recordTurn(ctx, userId, req.Text, resp)
	return resp, nil
}

// recordTurn stores both sides of the exchange. History is best effort.
func (s *assistantService) recordTurn(ctx context.Context, userId, text string, resp *orchestrator.Response) {
	if s.uowFactory == nil {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.warnHistory(resp.SessionID, err)
		return
	}
	defer uow.Rollback()

	now := s.now()
	turns := []*entity.ChatTurn{
		{Role: "user", Text: text},
		{Role: "assistant", Text: resp.Message, Category: string(resp.Category), Step: resp.Step},
	}
	for i, t := range turns {
		t.Id = uuid.New()
		t.SessionId = resp.SessionID
		t.UserId = userId
		t.StepNumber = resp.StepNumber
		t.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		if err := uow.ChatTurnRepository().Create(ctx, t); err != nil {
			s.warnHistory(resp.SessionID, err)
			return
		}
	}
	if err := uow.Commit(); err != nil {
		s.warnHistory(resp.SessionID, err)
	}
}

func (s *assistantService) warnHistory(sessionId string, err error) {
	s.logger.Warn("HTTP", "Failed to record chat history", map[string]interface{}{
		"session_id": sessionId,
		"error":      err.Error(),
	})
}

func (s *assistantService) ownedSession(ctx context.Context, userId, sessionId string) (*store.Session, error) {
	session, err := s.orchestrator.Session(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session.UserID != userId {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

func (s *assistantService) GetSession(ctx context.Context, userId, sessionId string) (*dto.SessionResponse, error) {
	session, err := s.ownedSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionResponse{
		Id:              session.ID,
		UserId:          session.UserID,
		Step:            session.StepLabel(),
		StepNumber:      session.StepNumber,
		CompletedStages: make([]string, 0, len(session.CompletedStages)),
		Artifacts:       session.Artifacts,
		Feedback:        session.Feedback,
		CreatedAt:       session.CreatedAt,
		LastUpdatedAt:   session.LastUpdatedAt,
	}
	if session.Plan != nil {
		res.Category = string(session.Plan.Category)
	}
	for _, st := range session.CompletedStages {
		res.CompletedStages = append(res.CompletedStages, string(st))
	}
	return res, nil
}

func (s *assistantService) DeleteSession(ctx context.Context, userId, sessionId string) error {
	if _, err := s.ownedSession(ctx, userId, sessionId); err != nil {
		return err
	}
	if err := s.orchestrator.EndSession(ctx, sessionId); err != nil {
		return err
	}
	if s.uowFactory != nil {
		if err := s.uowFactory.NewUnitOfWork(ctx).ChatTurnRepository().DeleteBySession(ctx, sessionId); err != nil {
			s.warnHistory(sessionId, err)
		}
	}
	return nil
}

// GetHistory reads persisted turns, so it keeps working after the live
// session has expired.
func (s *assistantService) GetHistory(ctx context.Context, userId, sessionId string) ([]dto.ChatTurnResponse, error) {
	res := make([]dto.ChatTurnResponse, 0)
	if s.uowFactory == nil {
		return res, nil
	}

	turns, err := s.uowFactory.NewUnitOfWork(ctx).ChatTurnRepository().FindAll(ctx,
		specification.BySession{SessionID: sessionId},
		specification.ByUser{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, store.ErrSessionNotFound
	}

	for _, t := range turns {
		res = append(res, dto.ChatTurnResponse{
			Id:         t.Id,
			StepNumber: t.StepNumber,
			Role:       t.Role,
			Text:       t.Text,
			Category:   t.Category,
			Step:       t.Step,
			CreatedAt:  t.CreatedAt,
		})
	}
	return res, nil
}

func (s *assistantService) GetCart(ctx context.Context, userId string) (*dto.CartResponse, error) {
	if userId == "" {
		return nil, ErrUserRequired
	}
	cart, err := s.carts.GetCart(ctx, userId)
	if err != nil {
		return nil, err
	}
	cart.UserId = userId
	priced, err := stage.PriceCart(ctx, s.catalog, cart, s.now())
	if err != nil {
		return nil, err
	}

	items := priced.Items
	if items == nil {
		items = []entity.CartItem{}
	}
	return &dto.CartResponse{
		UserId:    userId,
		Items:     items,
		ItemCount: priced.Count(),
		Total:     priced.Total().StringFixed(2),
	}, nil
}
