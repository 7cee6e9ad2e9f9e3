package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/skiff-deploy/skiff/internal/core/domain"
	"github.com/skiff-deploy/skiff/internal/core/ports"
)

// DeployHandler exposes the orchestrator over HTTP for the serve subcommand.
type DeployHandler struct {
	orch ports.Orchestrator
}

func NewDeployHandler(orch ports.Orchestrator) *DeployHandler {
	return &DeployHandler{orch: orch}
}

// NewApp returns the fiber application with all routes registered.
func NewApp(h *DeployHandler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Post("/deploy", h.Deploy)
	v1.Get("/status", h.Status)
	v1.Get("/logs", h.Logs)
	v1.Delete("/deployment", h.StopDeployment)

	return app
}

// Deploy runs the full deploy sequence. This is a blocking call: the request
// does not return until the new instance is healthy or the deploy fails.
func (h *DeployHandler) Deploy(c *fiber.Ctx) error {
	report, err := h.orch.Deploy(c.Context())
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *DeployHandler) Status(c *fiber.Ctx) error {
	report, err := h.orch.Status(c.Context())
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

func (h *DeployHandler) StopDeployment(c *fiber.Ctx) error {
	if err := h.orch.Stop(c.Context()); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *DeployHandler) Logs(c *fiber.Ctx) error {
	// Never follow over HTTP; a snapshot keeps the request bounded.
	logs, err := h.orch.Logs(c.Context(), false)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrHealthTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRuntimeUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
