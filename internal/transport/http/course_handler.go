package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/middleware"
)

type CourseHandler struct {
	courses  *usecase.CourseUseCase
	progress *usecase.ProgressUseCase
}

func NewCourseHandler(courses *usecase.CourseUseCase, progress *usecase.ProgressUseCase) *CourseHandler {
	return &CourseHandler{courses: courses, progress: progress}
}

type createCourseReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	HTMLCode    string `json:"html_code"`
	CSSCode     string `json:"css_code"`
	JSCode      string `json:"js_code"`
	ShowCSS     bool   `json:"show_css"`
	ShowJS      bool   `json:"show_js"`
}

type courseViewResp struct {
	Course    domain.Course       `json:"course"`
	Tabs      []string            `json:"tabs"`
	Code      domain.CodeSnapshot `json:"code"`
	Completed bool                `json:"completed"`
	Progress  *domain.Progress    `json:"progress,omitempty"`
}

func courseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	includeCompleted, _ := strconv.ParseBool(c.DefaultQuery("include_completed", "false"))

	courses, err := h.courses.List(c, middleware.CurrentSession(c), includeCompleted)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GET /api/v1/courses/:id
func (h *CourseHandler) GetOne(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}

	view, err := h.progress.CourseView(c, id, middleware.CurrentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseViewResp{
		Course:    view.Course,
		Tabs:      view.Tabs,
		Code:      view.Code,
		Completed: view.Completed,
		Progress:  view.Progress,
	})
}

// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courses.Create(c, middleware.CurrentSession(c), usecase.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		HTMLCode:    req.HTMLCode,
		CSSCode:     req.CSSCode,
		JSCode:      req.JSCode,
		ShowCSS:     req.ShowCSS,
		ShowJS:      req.ShowJS,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}
