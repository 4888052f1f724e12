package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"panorama-service/internal/metrics"
	"panorama-service/internal/services"
	"panorama-service/internal/services/caches"
)

// CacheHandler exposes the cache admin endpoints.
type CacheHandler struct {
	Cache   *caches.MemoryCache
	Service *services.FileService
	Metrics *metrics.Metrics
	Timeout time.Duration
}

// NewCacheHandler creates a cache handler over the serving cache.
func NewCacheHandler(cache *caches.MemoryCache, service *services.FileService, m *metrics.Metrics, timeout time.Duration) *CacheHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CacheHandler{Cache: cache, Service: service, Metrics: m, Timeout: timeout}
}

// GetCacheStats handles GET /cache/stats to retrieve cache statistics.
// @Summary Get cache statistics
// @Description Returns entry count, payload bytes, hit/miss counters and hit rate of the in-process file cache
// @Tags cache
// @Produce json
// @Success 200 {object} caches.Stats "Cache statistics"
// @Router /cache/stats [get]
func (h *CacheHandler) GetCacheStats(c *fiber.Ctx) error {
	stats := h.Cache.GetStats()
	h.Metrics.SetCacheStats(stats.Items, stats.SizeBytes)
	return c.JSON(stats)
}

// WarmCache handles POST /cache/warm to pre-populate the cache.
// @Summary Warm the file cache
// @Description Pre-populates the cache for a list of signatures, running the normal serving order per entry
// @Tags cache
// @Accept json
// @Produce json
// @Param request body WarmRequest true "Signatures to warm"
// @Success 200 {object} map[string]interface{} "All entries warmed"
// @Success 207 {object} map[string]interface{} "Some entries failed"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /cache/warm [post]
func (h *CacheHandler) WarmCache(c *fiber.Ctx) error {
	var request WarmRequest
	if err := c.BodyParser(&request); err != nil {
		log.Printf("Invalid warm request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid request format",
		})
	}
	if len(request.Signatures) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "No signatures provided",
		})
	}
	log.Printf("Warming cache for %d signatures", len(request.Signatures))

	ctx, cancel := context.WithTimeout(c.Context(), h.Timeout)
	defer cancel()

	warmed := 0
	failed := make([]string, 0)
	for _, sig := range request.Signatures {
		if err := h.Service.Warm(ctx, services.FileQuery{Signature: sig}); err != nil {
			log.Printf("Warm failed for signature %s: %v", sig, err)
			failed = append(failed, sig)
			continue
		}
		warmed++
	}

	stats := h.Cache.GetStats()
	h.Metrics.SetCacheStats(stats.Items, stats.SizeBytes)

	status := fiber.StatusOK
	if len(failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(fiber.Map{
		"success": len(failed) == 0,
		"warmed":  warmed,
		"failed":  failed,
	})
}

// InvalidateEntry handles DELETE /cache/entry to evict one cached file.
// @Summary Invalidate a cached file
// @Description Evicts the cache entry for a storage key, or for the key a signature resolves to
// @Tags cache
// @Produce json
// @Param key query string false "Storage key"
// @Param signature query string false "Rendered image signature"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{} "Missing parameters"
// @Failure 404 {object} map[string]interface{} "Unknown signature"
// @Router /cache/entry [delete]
func (h *CacheHandler) InvalidateEntry(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		sig := c.Query("signature")
		if sig == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "key or signature is required",
			})
		}
		resolved, err := h.Service.ResolveKey(services.FileQuery{Signature: sig})
		if err != nil {
			log.Printf("Cache invalidation failed to resolve signature %s: %v", sig, err)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		}
		key = resolved
	}
	h.Cache.Evict(key)
	log.Printf("Evicted cache entry for key %s", key)
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearCache handles POST /cache/clear to drop all cached entries.
// @Summary Clear the file cache
// @Description Removes all entries from the in-process cache
// @Tags cache
// @Produce json
// @Success 200 {object} map[string]interface{} "Cache cleared"
// @Router /cache/clear [post]
func (h *CacheHandler) ClearCache(c *fiber.Ctx) error {
	h.Cache.Clear()
	h.Metrics.SetCacheStats(0, 0)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cache cleared successfully",
	})
}

// WarmRequest is the request body for cache warming.
type WarmRequest struct {
	Signatures []string `json:"signatures"`
}
