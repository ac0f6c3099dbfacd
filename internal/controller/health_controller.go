package controller

import (
	"beaglemind-be/internal/pkg/serverutils"
	internalWS "beaglemind-be/internal/websocket"
	"beaglemind-be/pkg/llm/factory"

	"github.com/gofiber/fiber/v2"
)

// searchGoneMessage points clients of the retired search endpoint at the wizard.
const searchGoneMessage = "Search feature removed. Please use /wizard for the Hardware Setup Wizard."

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	SearchGone(ctx *fiber.Ctx) error
}

type healthController struct {
	registry *factory.Registry
	hub      *internalWS.Hub
}

func NewHealthController(registry *factory.Registry, hub *internalWS.Hub) IHealthController {
	return &healthController{
		registry: registry,
		hub:      hub,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/search", c.SearchGone)
	r.Post("/search", c.SearchGone)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	data := fiber.Map{"status": "ok"}
	if c.registry != nil {
		data["providers"] = c.registry.Names()
	}
	if c.hub != nil {
		data["chat_sessions"] = c.hub.Active()
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", data))
}

func (c *healthController) SearchGone(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusGone).JSON(serverutils.ErrorResponseWithData(fiber.StatusGone, searchGoneMessage, fiber.Map{
		"error": searchGoneMessage,
	}))
}
