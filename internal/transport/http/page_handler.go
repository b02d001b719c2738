package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/middleware"
)

// PageHandler serves the server-rendered site. It uses the same use cases
// as the JSON API and keeps tokens in HttpOnly cookies.
type PageHandler struct {
	auth          *usecase.AuthUseCase
	courses       *usecase.CourseUseCase
	progress      *usecase.ProgressUseCase
	secureCookies bool
	log           logging.Logger
}

func NewPageHandler(auth *usecase.AuthUseCase, courses *usecase.CourseUseCase, progress *usecase.ProgressUseCase, secureCookies bool, log logging.Logger) *PageHandler {
	return &PageHandler{
		auth:          auth,
		courses:       courses,
		progress:      progress,
		secureCookies: secureCookies,
		log:           log.With("component", "pages"),
	}
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = middleware.CurrentSession(c)
	c.HTML(status, name, data)
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	switch status {
	case http.StatusNotFound:
		h.render(c, status, "not_found.html", nil)
	case http.StatusUnauthorized:
		c.Redirect(http.StatusSeeOther, "/login")
	case http.StatusForbidden:
		h.render(c, status, "forbidden.html", nil)
	default:
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		h.render(c, status, "error.html", gin.H{"Status": status, "Message": msg})
	}
}

func (h *PageHandler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", nil)
}

func (h *PageHandler) NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.render(c, http.StatusNotFound, "not_found.html", nil)
}

func (h *PageHandler) LoginForm(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

func (h *PageHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	pair, err := h.auth.Login(c, email, c.PostForm("password"))
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		h.render(c, status, "login.html", gin.H{"Title": "Log in", "Error": msg, "Email": email})
		return
	}
	middleware.SetAuthCookies(c, pair, h.secureCookies)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *PageHandler) RegisterForm(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Sign up"})
}

func (h *PageHandler) Register(c *gin.Context) {
	in := usecase.RegisterInput{
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
		FirstName:       c.PostForm("firstname"),
		LastName:        c.PostForm("lastname"),
	}
	_, pair, err := h.auth.Register(c, in)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		h.render(c, status, "register.html", gin.H{"Title": "Sign up", "Error": msg, "Form": in})
		return
	}
	middleware.SetAuthCookies(c, pair, h.secureCookies)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *PageHandler) Logout(c *gin.Context) {
	var err error
	if sess := middleware.CurrentSession(c); sess != nil {
		err = h.auth.Logout(c, sess)
	} else if token, _ := c.Cookie(middleware.RefreshCookie); token != "" {
		err = h.auth.LogoutToken(c, token)
	}
	if err != nil {
		h.log.Warn(c, "logout failed", "err", err)
	}
	middleware.ClearAuthCookies(c, h.secureCookies)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) Courses(c *gin.Context) {
	includeCompleted, _ := strconv.ParseBool(c.Query("include_completed"))
	courses, err := h.courses.List(c, middleware.CurrentSession(c), includeCompleted)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "courses.html", gin.H{
		"Title":            "Courses",
		"Courses":          courses,
		"IncludeCompleted": includeCompleted,
	})
}

func pageCourseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.ErrCourseNotFound
	}
	return id, nil
}

func (h *PageHandler) Course(c *gin.Context) {
	id, err := pageCourseID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view, err := h.progress.CourseView(c, id, middleware.CurrentSession(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "course.html", gin.H{
		"Title": view.Course.Title,
		"View":  view,
		"Saved": c.Query("saved"),
	})
}

func formCode(c *gin.Context) domain.CodeSnapshot {
	return domain.CodeSnapshot{
		HTML: c.PostForm("html"),
		CSS:  c.PostForm("css"),
		JS:   c.PostForm("js"),
	}
}

func (h *PageHandler) Submit(c *gin.Context) {
	id, err := pageCourseID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	sess := middleware.CurrentSession(c)
	if _, err := h.progress.Submit(c, sess.UserID, id, formCode(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/course/"+id.String()+"?saved=submitted")
}

func (h *PageHandler) SaveDraft(c *gin.Context) {
	id, err := pageCourseID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	sess := middleware.CurrentSession(c)
	if err := h.progress.SaveDraft(c, sess.UserID, id, formCode(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/course/"+id.String()+"?saved=draft")
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	d, err := h.progress.Dashboard(c, sess.UserID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Dashboard": d})
}

func (h *PageHandler) AddCourseForm(c *gin.Context) {
	h.render(c, http.StatusOK, "add_course.html", gin.H{
		"Title":        "Add course",
		"Difficulties": domain.Difficulties,
		"Form":         usecase.CreateCourseInput{Difficulty: domain.DifficultyBeginner},
	})
}

func (h *PageHandler) AddCourse(c *gin.Context) {
	in := usecase.CreateCourseInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Difficulty:  c.PostForm("difficulty"),
		HTMLCode:    c.PostForm("html_code"),
		CSSCode:     c.PostForm("css_code"),
		JSCode:      c.PostForm("js_code"),
		ShowCSS:     c.PostForm("show_css") != "",
		ShowJS:      c.PostForm("show_js") != "",
	}
	course, err := h.courses.Create(c, middleware.CurrentSession(c), in)
	if err != nil {
		status, msg := statusFor(err)
		if status != http.StatusBadRequest {
			h.renderError(c, err)
			return
		}
		h.render(c, status, "add_course.html", gin.H{
			"Title":        "Add course",
			"Difficulties": domain.Difficulties,
			"Form":         in,
			"Error":        msg,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/course/"+course.ID.String())
}
