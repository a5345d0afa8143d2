package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reno_server/server/accounts/domain"
	"reno_server/server/accounts/service"
	commonlog "reno_server/server/common/log"
	"reno_server/server/common/middleware"
	"reno_server/server/common/transport/httpresp"
)

type Handler struct {
	accounts *service.AccountService
}

func NewHandler(accounts *service.AccountService) *Handler {
	return &Handler{accounts: accounts}
}

func (h *Handler) RegisterRoutes(public, authed gin.IRoutes) {
	public.POST("/auth/signup", h.signup)
	public.POST("/auth/login", h.login)
	authed.GET("/auth/profile", h.profile)
}

type authResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
	Token   string      `json:"token"`
}

func (h *Handler) signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpresp.Validation("Invalid JSON in request body"))
		return
	}
	user, token, err := h.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, httpresp.Validation(verr.Message))
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, httpresp.Conflict(httpresp.ErrEmailExists))
		default:
			commonlog.Errorf("signup failed: %v", err)
			c.JSON(http.StatusInternalServerError, httpresp.ServerError())
		}
		return
	}
	c.JSON(http.StatusCreated, authResponse{Message: "User created successfully", User: user, Token: token})
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpresp.Validation("Invalid JSON in request body"))
		return
	}
	user, token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, httpresp.Validation(verr.Message))
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidCredentials))
		default:
			commonlog.Errorf("login failed: %v", err)
			c.JSON(http.StatusInternalServerError, httpresp.ServerError())
		}
		return
	}
	c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: user, Token: token})
}

func (h *Handler) profile(c *gin.Context) {
	_, email, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	user, err := h.accounts.Profile(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, httpresp.NotFound("User not found"))
			return
		}
		commonlog.Errorf("load profile for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, httpresp.ServerError())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
