package enchantments

import (
	"errors"
	"net/url"

	"enchlib/core/logger"
	"enchlib/core/reconcile"
	"enchlib/core/tables"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for enchantments.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the enchantment routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/enchantments")
	group.Get("/", h.HandleList)
	group.Get("/stats", h.HandleStats)
	group.Get("/registry", h.HandleRegistryInfo)
	group.Get("/validate", h.HandleValidate)
	group.Post("/reconcile", h.HandleReconcile)
	group.Post("/reload", h.HandleReload)
	group.Get("/:id", h.HandleGet)
	group.Delete("/:id", h.HandleRemove)
	group.Put("/:id/enabled", h.HandleSetEnabled)
	group.Put("/:id/max-level", h.HandleSetMaxLevel)
	group.Delete("/:id/max-level", h.HandleClearMaxLevel)
	group.Put("/:id/rarity", h.HandleSetRarity)
	group.Put("/:id/:table", h.HandleSetList)
}

// HandleList lists every configured enchantment.
// @Summary List Enchantments
// @Tags enchantments
// @Produce json
// @Param enabled query boolean false "Only enabled enchantments"
// @Success 200 {array} tables.Detail
// @Router /enchantments [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List(c.Context(), c.QueryBool("enabled")))
}

// HandleGet returns one enchantment.
// @Summary Get Enchantment
// @Tags enchantments
// @Produce json
// @Param id path string true "Enchantment id (e.g. 'minecraft:sharpness')"
// @Success 200 {object} tables.Detail
// @Failure 404 {object} map[string]string "Not Found"
// @Router /enchantments/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	d, err := h.service.Get(c.Context(), param(c, "id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// HandleRemove deletes every row of an enchantment.
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.Context(), param(c, "id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSetEnabled enables or disables an enchantment.
// Body: {"enabled": true}
func (h *Handler) HandleSetEnabled(c *fiber.Ctx) error {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil || body.Enabled == nil {
		return badRequest(c, "body must be {\"enabled\": bool}")
	}
	d, err := h.service.SetEnabled(c.Context(), param(c, "id"), *body.Enabled)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// HandleSetMaxLevel overrides the max level.
// Body: {"level": 5}
func (h *Handler) HandleSetMaxLevel(c *fiber.Ctx) error {
	var body struct {
		Level *int `json:"level"`
	}
	if err := c.BodyParser(&body); err != nil || body.Level == nil {
		return badRequest(c, "body must be {\"level\": int}")
	}
	d, err := h.service.SetMaxLevel(c.Context(), param(c, "id"), *body.Level)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// HandleClearMaxLevel drops the max level override.
func (h *Handler) HandleClearMaxLevel(c *fiber.Ctx) error {
	d, err := h.service.ClearMaxLevel(c.Context(), param(c, "id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// HandleSetRarity sets the rarity.
// Body: {"rarity": "rare"}
func (h *Handler) HandleSetRarity(c *fiber.Ctx) error {
	var body struct {
		Rarity string `json:"rarity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body must be {\"rarity\": string}")
	}
	d, err := h.service.SetRarity(c.Context(), param(c, "id"), body.Rarity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// HandleSetList replaces a compatibility, categories or incompatibility row.
// Body: {"values": ["a", "b"]}
func (h *Handler) HandleSetList(c *fiber.Ctx) error {
	kind, err := tables.ParseKind(c.Params("table"))
	if err != nil || !tables.IsListKind(kind) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown list table " + c.Params("table")})
	}
	var body struct {
		Values []string `json:"values"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body must be {\"values\": [string]}")
	}
	d, err := h.service.SetList(c.Context(), param(c, "id"), kind, body.Values)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(d)
}

// HandleStats returns table statistics.
// @Summary Enchantment Statistics
// @Tags enchantments
// @Produce json
// @Success 200 {object} Stats
// @Router /enchantments/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	st, err := h.service.Stats(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(st)
}

// HandleRegistryInfo returns registry id counts per namespace.
func (h *Handler) HandleRegistryInfo(c *fiber.Ctx) error {
	info, err := h.service.RegistryInfo(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(info)
}

// HandleValidate compares the tables with the registry.
// @Summary Validate Configuration
// @Tags enchantments
// @Produce json
// @Success 200 {object} reconcile.ValidationReport
// @Router /enchantments/validate [get]
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	report, err := h.service.Validate(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleReconcile fills missing rows, optionally pruning unknown ids.
// @Summary Reconcile Configuration
// @Tags enchantments
// @Produce json
// @Param dry_run query boolean false "Plan only"
// @Param prune query boolean false "Plan removal of ids unknown to the registry"
// @Param confirm query boolean false "Confirm removals"
// @Router /enchantments/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	opts := reconcile.Options{
		DryRun:    c.QueryBool("dry_run"),
		Prune:     c.QueryBool("prune"),
		Confirmed: c.QueryBool("confirm"),
	}
	l.Info("Reconcile requested",
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("prune", opts.Prune),
		zap.Bool("confirmed", opts.Confirmed))

	plan, report, err := h.service.Reconcile(c.Context(), opts)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"plan":   plan,
		"report": report,
	})
}

// HandleReload re-reads the table files.
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	st, err := h.service.Reload()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "reloaded", "stats": st})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, tables.ErrEmptyID),
		errors.Is(err, tables.ErrInvalidLevel),
		errors.Is(err, tables.ErrEmptyRarity),
		errors.Is(err, tables.ErrInvalidValue),
		errors.Is(err, tables.ErrUnknownTable):
		status = fiber.StatusBadRequest
	}
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Enchantment request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// param returns a path parameter with percent-encoding removed, so both
// minecraft:sharpness and minecraft%3Asharpness work.
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
