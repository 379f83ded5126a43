package controller

import (
	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/pkg/serverutils"
	"smart-grocery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
}

type profileController struct {
	service   service.IProfileService
	jwtSecret string
}

func NewProfileController(service service.IProfileService, jwtSecret string) IProfileController {
	return &profileController{service: service, jwtSecret: jwtSecret}
}

func (c *profileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/profile/v1")
	h.Use(serverutils.OptionalJwt(c.jwtSecret))
	h.Get("", c.GetProfile)
	h.Put("", c.UpdateProfile)
}

func (c *profileController) GetProfile(ctx *fiber.Ctx) error {
	res, err := c.service.GetProfile(ctx.UserContext(), serverutils.UserID(ctx, ctx.Query("user_id")))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) UpdateProfile(ctx *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.UserContext(), serverutils.UserID(ctx, req.UserId), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update profile", res))
}
