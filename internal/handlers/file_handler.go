package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"panorama-service/internal/apperrors"
	"panorama-service/internal/metrics"
	"panorama-service/internal/services"
)

// FileHandler serves rendered composite files with conditional, cached and
// streaming responses.
type FileHandler struct {
	Service *services.FileService
	Metrics *metrics.Metrics
	Timeout time.Duration
}

// NewFileHandler creates a FileHandler. timeout bounds each request's work.
func NewFileHandler(service *services.FileService, m *metrics.Metrics, timeout time.Duration) *FileHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FileHandler{Service: service, Metrics: m, Timeout: timeout}
}

// GetFile handles GET /file to resolve and serve a rendered composite.
// @Summary Resolve and serve a rendered composite image
// @Description Resolves a file by direct storage key, numeric id, or signature (+ optional panoramaId) and serves it with conditional and range support
// @Tags files
// @Produce application/octet-stream
// @Param key query string false "Direct storage key (no lookup)"
// @Param id query string false "Rendered image numeric id"
// @Param signature query string false "Rendered image signature"
// @Param panoramaId query string false "Restrict signature lookup to one panorama"
// @Param If-None-Match header string false "Conditional request ETag"
// @Param Range header string false "Byte range request"
// @Success 200 {file} binary "File content"
// @Success 206 {file} binary "Partial content"
// @Success 304 "Not modified"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 408 {object} map[string]interface{} "Timeout"
// @Failure 502 {object} map[string]interface{} "Object store failure"
// @Router /file [get]
func (h *FileHandler) GetFile(c *fiber.Ctx) error {
	started := time.Now()
	defer func() {
		h.Metrics.ObserveRequestDuration("file", time.Since(started).Seconds())
	}()

	q, err := services.ParseFileQuery(
		c.Query("key"), c.Query("id"), c.Query("signature"), c.Query("panoramaId"))
	if err != nil {
		return h.respondError(c, "parse", err)
	}

	rng := parseRangeHeader(c.Get(fiber.HeaderRange))

	ctx, cancel := context.WithTimeout(c.Context(), h.Timeout)
	defer cancel()

	result, err := h.Service.ServeFile(ctx, q, c.Get(fiber.HeaderIfNoneMatch), rng)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			err = apperrors.Timeout("file request exceeded deadline")
		}
		return h.respondError(c, "serve", err)
	}

	h.Metrics.RecordFileRequest(result.Source)
	setFileHeaders(c, result)

	if result.NotModified {
		log.Printf("Serving 304 for key/id/signature=%s%s%s", q.Key, idString(q), q.Signature)
		return c.SendStatus(fiber.StatusNotModified)
	}

	if result.Data != nil {
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(int64(len(result.Data)), 10))
		return c.Status(fiber.StatusOK).Send(result.Data)
	}

	if result.Partial {
		c.Set(fiber.HeaderContentRange, contentRange(result))
		c.Status(fiber.StatusPartialContent)
	} else {
		c.Status(fiber.StatusOK)
	}
	if result.Info.ContentLength > 0 {
		return c.SendStream(result.Body, int(result.Info.ContentLength))
	}
	return c.SendStream(result.Body)
}

func idString(q services.FileQuery) string {
	if q.ID == nil {
		return ""
	}
	return strconv.FormatInt(*q.ID, 10)
}

func setFileHeaders(c *fiber.Ctx, r *services.FetchResult) {
	if r.Info.ContentType != "" {
		c.Set(fiber.HeaderContentType, r.Info.ContentType)
	}
	if r.Info.ETag != "" {
		c.Set(fiber.HeaderETag, quoteETag(r.Info.ETag))
	}
	if !r.Info.LastModified.IsZero() {
		c.Set(fiber.HeaderLastModified, r.Info.LastModified.UTC().Format(http.TimeFormat))
	}
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	c.Set("X-Cache", r.Source)
}

func quoteETag(etag string) string {
	if strings.HasPrefix(etag, `"`) || strings.HasPrefix(etag, "W/") {
		return etag
	}
	return `"` + etag + `"`
}

// contentRange renders the Content-Range header; an unknown total renders
// as "*".
func contentRange(r *services.FetchResult) string {
	if r.TotalSize < 0 {
		return fmt.Sprintf("bytes %d-%d/*", r.RangeStart, r.RangeEnd)
	}
	return fmt.Sprintf("bytes %d-%d/%d", r.RangeStart, r.RangeEnd, r.TotalSize)
}

// parseRangeHeader parses a single "bytes=start-end" range. Malformed or
// multi-part ranges are ignored and the full object is served.
func parseRangeHeader(header string) *services.ByteRange {
	if header == "" || !strings.HasPrefix(header, "bytes=") {
		return nil
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return nil
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil
	}
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 {
		return nil
	}
	end := int64(-1)
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || end < start {
			return nil
		}
	}
	return &services.ByteRange{Start: start, End: end}
}

func (h *FileHandler) respondError(c *fiber.Ctx, op string, err error) error {
	status := apperrors.HTTPStatus(err)
	log.Printf("File request failed: op=%s status=%d error=%v", op, status, err)
	if status == fiber.StatusInternalServerError || status == fiber.StatusBadGateway {
		h.Metrics.RecordFileRequest("ERROR")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": true, "message": err.Error(),
	})
}
