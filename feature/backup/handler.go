package backup

import (
	"errors"
	"strconv"

	"enchlib/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for backups.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the backup routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/backups")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandlePush)
	group.Post("/restore", h.HandlePull)
	group.Delete("/", h.HandlePrune)
	group.Delete("/:name", h.HandleDelete)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	if errors.Is(err, ErrNoBackup) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleList lists the snapshots in storage.
// @Summary List Backups
// @Tags backups
// @Produce json
// @Success 200 {array} Snapshot
// @Router /backups [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, "Failed to list backups", err)
	}
	return c.JSON(list)
}

// HandlePush uploads the table files as a new snapshot.
// @Summary Push Backup
// @Tags backups
// @Produce json
// @Success 201 {object} Snapshot
// @Router /backups [post]
func (h *Handler) HandlePush(c *fiber.Ctx) error {
	snap, err := h.service.Push(c.UserContext())
	if err != nil {
		return h.fail(c, "Failed to push backup", err)
	}
	return c.Status(fiber.StatusCreated).JSON(snap)
}

// HandlePull restores the named snapshot, or the newest without a name.
// @Summary Restore Backup
// @Tags backups
// @Produce json
// @Param name query string false "Snapshot name"
// @Success 200 {object} Snapshot
// @Failure 404 {object} map[string]string
// @Router /backups/restore [post]
func (h *Handler) HandlePull(c *fiber.Ctx) error {
	snap, err := h.service.Pull(c.UserContext(), c.Query("name"))
	if err != nil {
		return h.fail(c, "Failed to restore backup", err)
	}
	return c.JSON(snap)
}

// HandlePrune keeps the newest snapshots and removes the rest.
// @Summary Prune Backups
// @Tags backups
// @Produce json
// @Param keep query int true "Snapshots to keep"
// @Router /backups [delete]
func (h *Handler) HandlePrune(c *fiber.Ctx) error {
	keep, err := strconv.Atoi(c.Query("keep"))
	if err != nil || keep < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "keep must be a non-negative integer"})
	}
	removed, err := h.service.Prune(c.UserContext(), keep)
	if err != nil {
		return h.fail(c, "Failed to prune backups", err)
	}
	return c.JSON(fiber.Map{"removed": removed})
}

// HandleDelete removes one snapshot.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("name")); err != nil {
		return h.fail(c, "Failed to delete backup", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
