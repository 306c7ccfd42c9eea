package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ondrasimku/info-service-go/internal/domain"
	"github.com/ondrasimku/info-service-go/internal/metrics"
	"github.com/ondrasimku/info-service-go/internal/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// InfoHandler owns the in-memory info document. Updates hold the write
// lock until the new document is persisted, so memory never runs ahead
// of disk.
type InfoHandler struct {
	storage storage.Store
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.RWMutex
	info domain.Info
}

func NewInfoHandler(storage storage.Store, initial domain.Info, maxSize int64, logger *slog.Logger) *InfoHandler {
	return &InfoHandler{
		storage: storage,
		maxSize: maxSize,
		logger:  logger,
		now:     time.Now,
		info:    initial,
	}
}

// Current returns a copy of the in-memory document.
func (h *InfoHandler) Current() domain.Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.info
}

func (h *InfoHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.Current())
}

func (h *InfoHandler) Update(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("Request body too large", "limit", h.maxSize)
			metrics.InfoUpdates.WithLabelValues("too_large").Inc()
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "Request body too large.",
			})
			return
		}
		h.logger.Warn("Failed to read request body", "error", err)
		metrics.InfoUpdates.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid JSON payload.",
		})
		return
	}

	update, err := domain.ParseUpdate(body)
	switch {
	case errors.Is(err, domain.ErrInvalidPayload):
		h.logger.Debug("Rejected malformed update payload")
		metrics.InfoUpdates.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid JSON payload.",
		})
		return
	case errors.Is(err, domain.ErrNoFields):
		h.logger.Debug("Rejected update without usable fields")
		metrics.InfoUpdates.WithLabelValues("no_fields").Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Provide a file_url or title to update.",
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.info.Apply(update, domain.NextTimestamp(h.info.UpdatedDate, h.now()))
	if err := h.storage.Save(c.Request.Context(), next); err != nil {
		h.logger.Error("Failed to persist info", "error", err)
		metrics.InfoUpdates.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to persist info.",
		})
		return
	}
	h.info = next

	h.logger.Info("Info updated", "title", next.Title, "fileUrl", next.FileURL, "updatedDate", next.UpdatedDate)
	metrics.InfoUpdates.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, next)
}
