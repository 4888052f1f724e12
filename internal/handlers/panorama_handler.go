package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"panorama-service/internal/services"
)

// PanoramaHandler serves the panorama catalog listing.
type PanoramaHandler struct {
	Service *services.PanoramaService
}

// NewPanoramaHandler creates a PanoramaHandler with the given service.
func NewPanoramaHandler(service *services.PanoramaService) *PanoramaHandler {
	return &PanoramaHandler{Service: service}
}

// ListPanoramas handles GET /panoramas to list panoramas with paging.
// @Summary List panoramas
// @Description Lists panoramas with optional limit and offset paging
// @Tags panoramas
// @Produce json
// @Param limit query int false "Maximum rows to return (non-negative)"
// @Param offset query int false "Rows to skip (non-negative)"
// @Success 200 {object} map[string]interface{} "Panorama page with total count"
// @Failure 400 {object} map[string]interface{} "Invalid paging parameters"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /panoramas [get]
func (h *PanoramaHandler) ListPanoramas(c *fiber.Ctx) error {
	limit, err := nonNegativeQuery(c, "limit")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	offset, err := nonNegativeQuery(c, "offset")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	panoramas, total, err := h.Service.ListPanoramas(limit, offset)
	if err != nil {
		log.Printf("Error listing panoramas: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Printf("Successfully listed %d of %d panoramas", len(panoramas), total)
	return c.JSON(fiber.Map{
		"success":    true,
		"totalCount": total,
		"panoramas":  panoramas,
	})
}

func nonNegativeQuery(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+": must be a non-negative integer")
	}
	return v, nil
}
