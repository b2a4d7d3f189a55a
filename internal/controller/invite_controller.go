package controller

import (
	"relatescore-be/internal/dto"
	"relatescore-be/internal/pkg/serverutils"
	"relatescore-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IInviteController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	SendEmail(ctx *fiber.Ctx) error
}

type inviteController struct {
	service service.IInviteService
}

func NewInviteController(service service.IInviteService) IInviteController {
	return &inviteController{service: service}
}

func (c *inviteController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/invite/v1")
	h.Use(auth)
	h.Post("/email", c.SendEmail)
}

func (c *inviteController) SendEmail(ctx *fiber.Ctx) error {
	var req dto.SendInviteEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendInviteEmail(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return sessionError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Invite sent", res))
}
