package controller

import (
	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/serverutils"
	"github.com/SantanaPablo/Manuales-IA/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILogController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type logController struct {
	logService service.ILogService
}

func NewLogController(logService service.ILogService) ILogController {
	return &logController{logService: logService}
}

func (c *logController) RegisterRoutes(r fiber.Router) {
	r.Get("/logs", c.List)
}

func (c *logController) List(ctx *fiber.Ctx) error {
	var req dto.LogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.logService.List(&req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list logs", res))
}
