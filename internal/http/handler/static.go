package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ondrasimku/info-service-go/internal/metrics"
)

const IndexFile = "index.html"

// StaticHandler serves the web front end from a single public directory.
type StaticHandler struct {
	root   string
	logger *slog.Logger
}

func NewStaticHandler(publicDir string, logger *slog.Logger) (*StaticHandler, error) {
	root, err := filepath.Abs(publicDir)
	if err != nil {
		return nil, err
	}

	return &StaticHandler{
		root:   root,
		logger: logger,
	}, nil
}

func (h *StaticHandler) Index(c *gin.Context) {
	h.Serve(c, IndexFile)
}

// Serve writes the file at name, relative to the public root. Paths that
// resolve outside the root are refused with 403.
func (h *StaticHandler) Serve(c *gin.Context, name string) {
	path := filepath.Join(h.root, filepath.FromSlash(name))
	if path != h.root && !strings.HasPrefix(path, h.root+string(filepath.Separator)) {
		h.logger.Warn("Refused path outside public root", "path", name, "clientIp", c.ClientIP())
		h.respond(c, http.StatusForbidden, "text/plain; charset=utf-8", []byte("Forbidden"))
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Debug("Static file not found", "path", name, "error", err)
		h.respond(c, http.StatusNotFound, "text/plain; charset=utf-8", []byte("Not Found"))
		return
	}

	h.respond(c, http.StatusOK, contentType(path), content)
}

func (h *StaticHandler) respond(c *gin.Context, code int, contentType string, body []byte) {
	metrics.StaticResponses.WithLabelValues(strconv.Itoa(code)).Inc()
	c.Data(code, contentType, body)
}

// contentType only distinguishes scripts from pages; the served asset set
// is small and fixed.
func contentType(path string) string {
	if strings.HasSuffix(path, ".js") {
		return "application/javascript"
	}
	return "text/html; charset=utf-8"
}
