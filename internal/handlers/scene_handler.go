package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"panorama-service/internal/metrics"
	"panorama-service/internal/scene"
	"panorama-service/internal/signature"
)

// SceneHandler serves the scene manifest and resolves selections to scenes.
// The manifest rows and legacy titles are loaded once at boot and immutable
// afterwards.
type SceneHandler struct {
	Rows    []scene.Row
	Titles  []scene.Title
	Metrics *metrics.Metrics
}

// NewSceneHandler creates a SceneHandler over the loaded catalogs.
func NewSceneHandler(rows []scene.Row, titles []scene.Title, m *metrics.Metrics) *SceneHandler {
	return &SceneHandler{Rows: rows, Titles: titles, Metrics: m}
}

// GetManifest handles GET /scenes to serve the scene catalog.
// @Summary Get the scene manifest
// @Description Returns the full catalog of pre-rendered scene rows
// @Tags scenes
// @Produce json
// @Success 200 {array} scene.Row "Scene rows"
// @Router /scenes [get]
func (h *SceneHandler) GetManifest(c *fiber.Ctx) error {
	return c.JSON(h.Rows)
}

// MatchScene handles GET /scenes/match to resolve a signature to a scene.
// @Summary Match a signature to a pre-rendered scene
// @Description Decodes the signature and returns the best-matching scene id, or null if no pre-rendered composite exists for the combination
// @Tags scenes
// @Produce json
// @Param signature query string true "Selection signature"
// @Success 200 {object} map[string]interface{} "Match result"
// @Failure 400 {object} map[string]interface{} "Missing or undecodable signature"
// @Router /scenes/match [get]
func (h *SceneHandler) MatchScene(c *fiber.Ctx) error {
	sig := c.Query("signature")
	if sig == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "signature is required",
		})
	}
	decoded, err := signature.Decode(sig)
	if err != nil {
		log.Printf("Scene match failed to decode signature: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid signature: " + err.Error(),
		})
	}

	sceneID, ok := scene.MatchForPanorama(decoded.Selection, decoded.PanoramaID, h.Rows)
	if !ok && len(h.Titles) > 0 {
		sceneID, ok = scene.MatchTitles(decoded.Selection, h.Titles)
	}
	if !ok {
		// Not an error: callers fall back to the panorama's default scene.
		h.Metrics.RecordSceneMatch("miss")
		log.Printf("No scene for signature %s", sig)
		return c.JSON(fiber.Map{"sceneId": nil})
	}
	h.Metrics.RecordSceneMatch("hit")
	return c.JSON(fiber.Map{"sceneId": sceneID})
}
