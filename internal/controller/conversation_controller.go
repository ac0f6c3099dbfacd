package controller

import (
	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/pkg/serverutils"
	"beaglemind-be/internal/service"
	"beaglemind-be/pkg/conversation"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Append(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	UpdateTitle(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
	jwtSecret           string
}

func NewConversationController(conversationService service.IConversationService, jwtSecret string) IConversationController {
	return &conversationController{
		conversationService: conversationService,
		jwtSecret:           jwtSecret,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Use(serverutils.OptionalJwtMiddleware(c.jwtSecret))
	h.Post("/create", c.Create)
	h.Post("/list", c.List)
	h.Post("/append", c.Append)
	h.Post("/messages", c.Messages)
	h.Post("/title", c.UpdateTitle)
	h.Post("/delete", c.Delete)
}

func identity(ctx *fiber.Ctx) conversation.Identity {
	userID, email := serverutils.Identity(ctx)
	return conversation.Identity{UserID: userID, UserEmail: email}
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Create(ctx.UserContext(), identity(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create conversation", res))
}

// List never fails: anonymous callers and upstream errors get an empty list.
func (c *conversationController) List(ctx *fiber.Ctx) error {
	res := c.conversationService.List(ctx.UserContext(), identity(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *conversationController) Append(ctx *fiber.Ctx) error {
	var req dto.AppendMessagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.conversationService.Append(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success append messages", nil))
}

func (c *conversationController) Messages(ctx *fiber.Ctx) error {
	var req dto.ConversationRef
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Messages(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *conversationController) UpdateTitle(ctx *fiber.Ctx) error {
	var req dto.UpdateTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.conversationService.UpdateTitle(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update title", nil))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	var req dto.ConversationRef
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Delete(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete conversation", res))
}
