package controller

import (
	"smart-grocery-be/internal/pkg/serverutils"
	"smart-grocery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICartController interface {
	RegisterRoutes(r fiber.Router)
	GetCart(ctx *fiber.Ctx) error
}

type cartController struct {
	service   service.IAssistantService
	jwtSecret string
}

func NewCartController(service service.IAssistantService, jwtSecret string) ICartController {
	return &cartController{service: service, jwtSecret: jwtSecret}
}

func (c *cartController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cart/v1")
	h.Use(serverutils.OptionalJwt(c.jwtSecret))
	h.Get("", c.GetCart)
}

func (c *cartController) GetCart(ctx *fiber.Ctx) error {
	res, err := c.service.GetCart(ctx.UserContext(), serverutils.UserID(ctx, ctx.Query("user_id")))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get cart", res))
}
