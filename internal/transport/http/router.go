package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
	"github.com/waste3d/codelearn/internal/middleware"
)

type RouterConfig struct {
	Auth     *usecase.AuthUseCase
	Courses  *usecase.CourseUseCase
	Progress *usecase.ProgressUseCase
	Limiter  *middleware.RateLimiter
	Metrics  *metrics.Metrics
	Log      logging.Logger

	AllowedOrigins  []string
	SecureCookies   bool
	PreviewDebounce time.Duration
	// Health reports storage readiness for /healthz. Nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery(), middleware.RequestLog(cfg.Log, cfg.Metrics))

	config := cors.DefaultConfig()
	config.AllowOrigins = cfg.AllowedOrigins
	if len(cfg.AllowedOrigins) == 0 {
		// same-origin only
		config.AllowOriginFunc = func(string) bool { return false }
	}
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(config))
	r.Use(middleware.Auth(cfg.Auth, cfg.SecureCookies))

	authHandler := NewAuthHandler(cfg.Auth, cfg.SecureCookies)
	courseHandler := NewCourseHandler(cfg.Courses, cfg.Progress)
	progressHandler := NewProgressHandler(cfg.Progress)
	previewHandler := NewPreviewHandler(cfg.PreviewDebounce, cfg.AllowedOrigins, cfg.Metrics, cfg.Log)
	pages := NewPageHandler(cfg.Auth, cfg.Courses, cfg.Progress, cfg.SecureCookies, cfg.Log)

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	r.GET("/ws/preview", previewHandler.Socket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", cfg.Limiter.Limit("register", 10, 1*time.Minute), authHandler.Register)
			auth.POST("/login", cfg.Limiter.Limit("login", 5, 1*time.Minute), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}
		api.GET("/me", middleware.RequireSession(), authHandler.Me)
		api.POST("/preview", previewHandler.Compose)

		course := api.Group("/courses")
		{
			course.GET("", courseHandler.List)
			course.GET("/:id", courseHandler.GetOne)
			course.POST("", middleware.RequireAdmin(), courseHandler.Create)
			course.PUT("/:id/progress", middleware.RequireSession(), progressHandler.Submit)
			course.PUT("/:id/draft", middleware.RequireSession(), progressHandler.SaveDraft)
		}
		api.GET("/progress", middleware.RequireSession(), progressHandler.Dashboard)
	}

	r.GET("/", pages.Home)
	r.GET("/login", pages.LoginForm)
	r.POST("/login", cfg.Limiter.Limit("login_page", 5, 1*time.Minute), pages.Login)
	r.GET("/register", pages.RegisterForm)
	r.POST("/register", pages.Register)
	r.POST("/logout", pages.Logout)
	r.GET("/courses", pages.Courses)
	r.GET("/course/:id", pages.Course)

	learner := r.Group("/", middleware.RequirePageSession())
	{
		learner.POST("/course/:id/submit", pages.Submit)
		learner.POST("/course/:id/draft", pages.SaveDraft)
		learner.GET("/dashboard", pages.Dashboard)
	}
	admin := r.Group("/admin", middleware.RequireAdminPage())
	{
		admin.GET("/add-course", pages.AddCourseForm)
		admin.POST("/add-course", pages.AddCourse)
	}
	r.NoRoute(pages.NoRoute)

	return r, nil
}
