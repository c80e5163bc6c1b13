package controller

import (
	"errors"
	"strconv"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/pkg/serverutils"
	"multimodal-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TotalCountHeader carries the number of rows matching a list query
const TotalCountHeader = "X-Total-Count"

type ISessionController interface {
	RegisterRoutes(r fiber.Router, sessionMiddleware fiber.Handler)
	Show(ctx *fiber.Ctx) error
	SetCredential(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	ListDispatches(ctx *fiber.Ctx) error
	GetDispatch(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, sessionMiddleware fiber.Handler) {
	h := r.Group("/session/v1")
	h.Use(sessionMiddleware)
	h.Get("", c.Show)
	h.Put("credential", c.SetCredential)
	h.Delete("history", c.ClearHistory)
	h.Get("dispatches", c.ListDispatches)
	h.Get("dispatches/:id", c.GetDispatch)
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	res := c.service.Show(ctx.UserContext(), serverutils.Workspace(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) SetCredential(ctx *fiber.Ctx) error {
	var req dto.SetCredentialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetCredential(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(constant.MessageCredentialSaved, res))
}

func (c *sessionController) ClearHistory(ctx *fiber.Ctx) error {
	res := c.service.ClearHistory(ctx.UserContext(), serverutils.Workspace(ctx))
	return ctx.JSON(serverutils.SuccessResponse(constant.MessageHistoryCleared, res))
}

func (c *sessionController) ListDispatches(ctx *fiber.Ctx) error {
	var req dto.ListDispatchesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, total, err := c.service.ListDispatches(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}

	ctx.Set(TotalCountHeader, strconv.FormatInt(total, 10))
	return ctx.JSON(serverutils.SuccessResponse("Success list dispatches", res))
}

func (c *sessionController) GetDispatch(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid dispatch id")
	}

	res, err := c.service.GetDispatch(ctx.UserContext(), serverutils.Workspace(ctx), id)
	if errors.Is(err, service.ErrDispatchNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show dispatch", res))
}
