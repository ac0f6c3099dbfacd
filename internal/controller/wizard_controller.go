package controller

import (
	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/pkg/serverutils"
	"beaglemind-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HeaderPlanMode reports which path produced a wizard plan.
const HeaderPlanMode = "X-Plan-Mode"

type IWizardController interface {
	RegisterRoutes(r fiber.Router)
	Plan(ctx *fiber.Ctx) error
	Commands(ctx *fiber.Ctx) error
}

type wizardController struct {
	wizardService service.IWizardService
}

func NewWizardController(wizardService service.IWizardService) IWizardController {
	return &wizardController{
		wizardService: wizardService,
	}
}

func (c *wizardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wizard")
	h.Post("", c.Plan)
	h.Post("/commands", c.Commands)
}

func (c *wizardController) Plan(ctx *fiber.Ctx) error {
	var req dto.WizardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wizardService.Plan(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	ctx.Set(HeaderPlanMode, string(res.Mode))
	return ctx.JSON(serverutils.SuccessResponse("Success generate plan", res))
}

func (c *wizardController) Commands(ctx *fiber.Ctx) error {
	var req dto.CommandsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wizardService.SuggestCommands(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success suggest commands", res))
}
