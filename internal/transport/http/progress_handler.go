package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/middleware"
)

type ProgressHandler struct {
	progress *usecase.ProgressUseCase
}

func NewProgressHandler(progress *usecase.ProgressUseCase) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type codeReq struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

func (r codeReq) snapshot() domain.CodeSnapshot {
	return domain.CodeSnapshot{HTML: r.HTML, CSS: r.CSS, JS: r.JS}
}

// PUT /api/v1/courses/:id/progress
func (h *ProgressHandler) Submit(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	var req codeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.CurrentSession(c)
	p, err := h.progress.Submit(c, sess.UserID, id, req.snapshot())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/v1/courses/:id/draft
func (h *ProgressHandler) SaveDraft(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	var req codeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.CurrentSession(c)
	if err := h.progress.SaveDraft(c, sess.UserID, id, req.snapshot()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/progress
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	d, err := h.progress.Dashboard(c, sess.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": d.Completed, "in_progress": d.InProgress})
}
