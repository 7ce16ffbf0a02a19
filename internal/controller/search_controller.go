package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/serverutils"
	"github.com/SantanaPablo/Manuales-IA/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const serviceName = "buscar_manual"

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	RegisterAPIRoutes(api fiber.Router)
	Status(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	logger        logger.ILogger
}

func NewSearchController(searchService service.ISearchService, log logger.ILogger) ISearchController {
	return &searchController{
		searchService: searchService,
		logger:        log,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Status)
	r.Get("/buscar", c.Search)
}

func (c *searchController) RegisterAPIRoutes(api fiber.Router) {
	api.Get("/answer", c.Answer)
}

func (c *searchController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.StatusResponse{
		Status:  "active",
		Service: serviceName,
		Cache:   c.searchService.CacheStats(),
	})
}

func parseSearchRequest(ctx *fiber.Ctx) (*dto.SearchRequest, error) {
	var req dto.SearchRequest
	if err := ctx.QueryParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	req.Pregunta = strings.TrimSpace(req.Pregunta)
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Search streams the answer as NDJSON, one {"respuesta": ...} object per fragment.
func (c *searchController) Search(ctx *fiber.Ctx) error {
	req, err := parseSearchRequest(ctx)
	if err != nil {
		return err
	}

	// The body is written after the handler returns, so generation gets its own context.
	genCtx, cancel := context.WithCancel(context.Background())
	stream, err := c.searchService.Stream(genCtx, req.Pregunta)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/x-ndjson")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer stream.Close()

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for fragment := range stream.Fragments() {
			if err := enc.Encode(dto.SearchFragment{Respuesta: fragment.Text}); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				c.logger.Info("SEARCH", "Client went away during stream", map[string]interface{}{"error": err.Error()})
				return
			}
		}
	}))
	return nil
}

func (c *searchController) Answer(ctx *fiber.Ctx) error {
	req, err := parseSearchRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.searchService.Answer(ctx.UserContext(), req.Pregunta)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}
