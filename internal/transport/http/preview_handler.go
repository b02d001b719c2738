package handlers

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
	"github.com/waste3d/codelearn/internal/preview"
)

const (
	maxPreviewMessage = 512 << 10
	previewWriteWait  = 5 * time.Second
)

type PreviewHandler struct {
	upgrader websocket.Upgrader
	delay    time.Duration
	metrics  *metrics.Metrics
	log      logging.Logger
}

type previewResp struct {
	Doc string `json:"doc"`
}

func NewPreviewHandler(delay time.Duration, origins []string, m *metrics.Metrics, log logging.Logger) *PreviewHandler {
	return &PreviewHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(origins),
		},
		delay:   delay,
		metrics: m,
		log:     log.With("component", "preview"),
	}
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and the configured CORS origins.
func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// POST /api/v1/preview
func (h *PreviewHandler) Compose(c *gin.Context) {
	var req preview.Fragments
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.metrics.PreviewRenders.WithLabelValues("http").Inc()
	c.JSON(http.StatusOK, previewResp{Doc: preview.Compose(req)})
}

// GET /ws/preview
func (h *PreviewHandler) Socket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn(c, "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxPreviewMessage)
	ctx := c.Request.Context()

	var writeMu sync.Mutex
	d := preview.NewDebouncer(h.delay, func(f preview.Fragments) {
		doc := preview.Compose(f)
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
		if err := conn.WriteJSON(previewResp{Doc: doc}); err != nil {
			h.log.Debug(ctx, "preview write failed", "err", err)
			return
		}
		h.metrics.PreviewRenders.WithLabelValues("ws").Inc()
	})
	defer d.Stop()

	for {
		var f preview.Fragments
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug(ctx, "preview connection closed", "err", err)
			}
			return
		}
		d.Push(f)
	}
}
