package controller

import (
	"errors"

	"brd-discovery-be/internal/dto"
	"brd-discovery-be/internal/pkg/serverutils"
	"brd-discovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDiscoveryController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ShowBRD(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ListStages(ctx *fiber.Ctx) error
}

type discoveryController struct {
	discoveryService service.IDiscoveryService
}

func NewDiscoveryController(discoveryService service.IDiscoveryService) IDiscoveryController {
	return &discoveryController{
		discoveryService: discoveryService,
	}
}

func (c *discoveryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/discovery/v1")
	h.Post("sessions", c.CreateSession)
	h.Get("stages", c.ListStages)

	protected := h.Group("", serverutils.JwtMiddleware)
	protected.Get("sessions", c.ListSessions)
	protected.Get("sessions/:id", c.ShowSession)
	protected.Get("sessions/:id/brd", c.ShowBRD)
	protected.Delete("sessions/:id", c.DeleteSession)
}

func (c *discoveryController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.discoveryService.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *discoveryController) ShowSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.discoveryService.Show(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Session not found")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *discoveryController) ListSessions(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}

	res, err := c.discoveryService.ListByUser(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *discoveryController) ShowBRD(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.discoveryService.GetBRD(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Session not found")
		}
		return err
	}

	if res.FinalBRD == "" {
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document not ready yet", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *discoveryController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	if err := c.discoveryService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *discoveryController) ListStages(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success list stages", c.discoveryService.Stages()))
}
