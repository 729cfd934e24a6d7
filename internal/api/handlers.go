package api

import (
	"bytes"
	"image/png"
	"mime"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/certgen/internal/certimg"
	"github.com/youruser/certgen/internal/columns"
	"github.com/youruser/certgen/internal/config"
	"github.com/youruser/certgen/internal/roster"
)

// Handler serves single-certificate renders for one configuration.
type Handler struct {
	renderer *certimg.Renderer
	logger   *zap.Logger
}

func NewHandler(r *certimg.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{renderer: r, logger: logger}
}

// health
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// certificate renders one row given as a JSON object of header -> value and
// returns the PNG. Headers are matched the same way as roster columns.
// With ?save=1 the image is also written to the output directory.
func (h *Handler) certificate(c *gin.Context) {
	var row roster.Row
	if err := c.BindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	headers := make([]string, 0, len(row))
	for k := range row {
		headers = append(headers, k)
	}
	// map iteration order must not influence matching
	sort.Strings(headers)

	cols := h.renderer.Columns(headers)
	v := h.renderer.Resolve(row, cols)
	filename := certimg.FileName(v[config.FieldName])

	canvas, err := h.renderer.Draw(v)
	if err != nil {
		h.logger.Error("render failed", zap.String("name", v.Name()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.Query("save") == "1" {
		path, err := h.renderer.Save(canvas, filename)
		if err != nil {
			h.logger.Error("save failed", zap.String("name", v.Name()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		h.logger.Info("saved", zap.String("path", path))
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, canvas); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// columnsPreview shows how ?h=... headers resolve against the configured
// fields.
func (h *Handler) columnsPreview(c *gin.Context) {
	headers := c.QueryArray("h")
	cols := h.renderer.Columns(headers)
	c.JSON(http.StatusOK, gin.H{
		"mapping":    cols.Mapping(),
		"unresolved": cols.Unresolved(),
		"canonical":  canonical(headers),
	})
}

func canonical(headers []string) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h] = columns.Normalize(h)
	}
	return out
}

// maxQRSize caps the side of a QR image served by /api/qr.
const maxQRSize = 2048

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	size := 256
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxQRSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and " + strconv.Itoa(maxQRSize)})
			return
		}
		size = v
	}
	b, err := certimg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}
