package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/codelearn/internal/application/usecase"
	"github.com/waste3d/codelearn/internal/infrastructure/security"
	"github.com/waste3d/codelearn/internal/middleware"
)

type AuthHandler struct {
	auth          *usecase.AuthUseCase
	secureCookies bool
}

func NewAuthHandler(auth *usecase.AuthUseCase, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

type registerReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"firstname"`
	LastName        string `json:"lastname"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func tokenBody(pair security.TokenPair) gin.H {
	return gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    int(pair.AccessTTL.Seconds()),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, pair, err := h.auth.Register(c, usecase.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookies(c, pair, h.secureCookies)
	body := tokenBody(pair)
	body["profile"] = profile
	c.JSON(http.StatusCreated, body)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Login(c, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookies(c, pair, h.secureCookies)
	c.JSON(http.StatusOK, tokenBody(pair))
}

// Refresh accepts the refresh token from the JSON body or the cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(middleware.RefreshCookie)
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
		return
	}

	pair, err := h.auth.Refresh(c, token)
	if err != nil {
		middleware.ClearAuthCookies(c, h.secureCookies)
		writeError(c, err)
		return
	}

	middleware.SetAuthCookies(c, pair, h.secureCookies)
	c.JSON(http.StatusOK, tokenBody(pair))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var err error
	if sess := middleware.CurrentSession(c); sess != nil {
		err = h.auth.Logout(c, sess)
	} else if token, _ := c.Cookie(middleware.RefreshCookie); token != "" {
		err = h.auth.LogoutToken(c, token)
	}
	middleware.ClearAuthCookies(c, h.secureCookies)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, sess.Profile)
}
