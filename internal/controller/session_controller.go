package controller

import (
	"errors"

	"relatescore-be/internal/dto"
	"relatescore-be/internal/pkg/serverutils"
	"relatescore-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Start(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Dispatch(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
	history service.IHistoryService
}

func NewSessionController(service service.ISessionService, history service.IHistoryService) ISessionController {
	return &sessionController{service: service, history: history}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/session/v1")
	h.Post("", c.Start)
	h.Get("", auth, c.Show)
	h.Post("/actions", auth, c.Dispatch)
	h.Get("/history", auth, c.History)
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	res, err := c.service.Start(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return sessionError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *sessionController) Dispatch(ctx *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Dispatch(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return sessionError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Action applied", res))
}

func (c *sessionController) History(ctx *fiber.Ctx) error {
	res, err := c.history.History(ctx.UserContext(), serverutils.SessionID(ctx), ctx.QueryInt("limit", 20), ctx.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

// sessionError maps service errors onto HTTP statuses.
func sessionError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Session expired or not found. Start a new session.")
	case errors.Is(err, service.ErrInviteUnavailable):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMailerDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return err
}
