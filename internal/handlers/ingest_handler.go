package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"panorama-service/internal/services"
)

// IngestHandler accepts render-farm output uploads.
type IngestHandler struct {
	Service *services.IngestService
}

// NewIngestHandler creates an IngestHandler with the given service.
func NewIngestHandler(service *services.IngestService) *IngestHandler {
	return &IngestHandler{Service: service}
}

// UploadRenderedImages handles POST /rendered-images to register composites.
// @Summary Register rendered composite images
// @Description Uploads a single composite image, or an archive of them, whose filenames are valid signatures; each file is stored and registered
// @Tags rendered-images
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Composite image or archive of composites"
// @Success 201 {object} map[string]interface{} "All files registered"
// @Success 207 {object} map[string]interface{} "Some files failed"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /rendered-images [post]
func (h *IngestHandler) UploadRenderedImages(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Printf("Failed to read ingest upload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to read file: " + err.Error(),
		})
	}
	log.Printf("Processing ingest upload: %s (%d bytes)", fileHeader.Filename, fileHeader.Size)

	results, err := h.Service.IngestUpload(c.Context(), fileHeader)
	if err != nil {
		log.Printf("Ingest failed for %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}

	registered := 0
	for _, r := range results {
		if r.Error == "" {
			registered++
		}
	}

	status := fiber.StatusCreated
	if registered < len(results) {
		status = fiber.StatusMultiStatus
	}
	log.Printf("Ingest of %s registered %d/%d files", fileHeader.Filename, registered, len(results))
	return c.Status(status).JSON(fiber.Map{
		"success":    registered == len(results),
		"registered": registered,
		"total":      len(results),
		"results":    results,
	})
}
