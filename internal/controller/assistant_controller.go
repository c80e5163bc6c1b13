package controller

import (
	"io"

	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/pkg/serverutils"
	"multimodal-assistant-be/internal/service"
	"multimodal-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router, sessionMiddleware fiber.Handler)
	GetModes(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router, sessionMiddleware fiber.Handler) {
	h := r.Group("/assistant/v1")
	h.Get("modes", c.GetModes)
	h.Post("upload", sessionMiddleware, c.Upload)
	h.Post("chat", sessionMiddleware, c.SendChat)
}

func (c *assistantController) GetModes(ctx *fiber.Ctx) error {
	res := c.service.GetModes()
	return ctx.JSON(serverutils.SuccessResponse("Success get processing modes", res))
}

func (c *assistantController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if fileHeader.Filename == "" {
		return assistant.ErrEmptyFileName
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	req := dto.UploadRequest{
		FileName: fileHeader.Filename,
		Content:  content,
		Mode:     ctx.FormValue("mode"),
		Question: ctx.FormValue("question"),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Upload(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload file", res))
}

func (c *assistantController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}
