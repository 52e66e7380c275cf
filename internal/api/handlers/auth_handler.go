package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/identity"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type AuthHandler struct {
	svc services.AccountService
}

func NewAuthHandler(svc services.AccountService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	identity.Session
	ConfirmationRequired bool `json:"confirmation_required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.SignUp", "email and password are required", err))
		return
	}

	sess, err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{
		Session:              sess,
		ConfirmationRequired: sess.AccessToken == "",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "email and password are required", err))
		return
	}

	sess, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: sess})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.svc.SignOut(c.Request.Context(), user, c.GetString(middleware.KeyAccessToken)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	acc, err := h.svc.Me(c.Request.Context(), user, c.GetString(middleware.KeyAccessToken))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}
