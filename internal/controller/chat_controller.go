package controller

import (
	"context"
	"encoding/json"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/pkg/serverutils"
	"smart-grocery-be/internal/service"
	internalWS "smart-grocery-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IAssistantService
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewChatController(service service.IAssistantService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) IChatController {
	return &chatController{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("/ws", c.ServeWs) // authenticates in the handshake

	h.Use(serverutils.OptionalJwt(c.jwtSecret))
	h.Post("/message", c.SendMessage)
	h.Get("/session/:id", c.GetSession)
	h.Delete("/session/:id", c.DeleteSession)
	h.Get("/session/:id/history", c.GetHistory)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), serverutils.UserID(ctx, req.UserId), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), serverutils.UserID(ctx, ctx.Query("user_id")), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.UserContext(), serverutils.UserID(ctx, ctx.Query("user_id")), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	res, err := c.service.GetHistory(ctx.UserContext(), serverutils.UserID(ctx, ctx.Query("user_id")), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

// ServeWs upgrades to a chat socket. With a JWT secret configured the token
// comes from the "token" query parameter or the Authorization header;
// otherwise the "user_id" query parameter names the shopper.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	userId, err := c.handshakeUser(ctx)
	if err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("HTTP", "Chat socket opened", map[string]interface{}{"user_id": userId})
		internalWS.ServeWs(context.Background(), c.hub, conn, userId, c.turn)
		c.logger.Info("HTTP", "Chat socket closed", map[string]interface{}{"user_id": userId})
	})(ctx)
}

func (c *chatController) handshakeUser(ctx *fiber.Ctx) (string, error) {
	if c.jwtSecret == "" {
		if id := ctx.Query("user_id"); id != "" {
			return id, nil
		}
		return "", fiber.NewError(fiber.StatusBadRequest, "Missing user_id")
	}

	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(c.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	userId, _ := claims["user_id"].(string)
	if userId == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Token missing user_id")
	}
	return userId, nil
}

// turn runs one socket frame through the assistant.
func (c *chatController) turn(ctx context.Context, userId string, payload []byte) ([]byte, []byte) {
	var req dto.SendMessageRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, internalWS.EncodeFrame("error", serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid frame"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		code, msg := serverutils.StatusFor(err)
		return nil, internalWS.EncodeFrame("error", serverutils.ErrorResponse(code, msg))
	}

	res, err := c.service.SendMessage(ctx, userId, &req)
	if err != nil {
		code, msg := serverutils.StatusFor(err)
		return nil, internalWS.EncodeFrame("error", serverutils.ErrorResponse(code, msg))
	}
	return internalWS.EncodeFrame("turn", res), nil
}
