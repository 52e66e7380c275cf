package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	code := utils.CodeInternal

	var ae *utils.AppError
	switch {
	case errors.As(err, &ae):
		code = ae.Code
	case status == http.StatusNotFound:
		code = utils.CodeNotFound
	}

	_ = c.Error(err)
	c.JSON(status, APIError{Code: code, Message: utils.SafeMessage(err)})
}

// requireUser builds the caller's identity from the verified token claims.
func requireUser(c *gin.Context) (models.User, bool) {
	uid := c.GetString(middleware.KeyUserID)
	if uid == "" {
		writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
		return models.User{}, false
	}
	return models.User{
		ID:          uid,
		Email:       c.GetString(middleware.KeyEmail),
		DisplayName: c.GetString(middleware.KeyDisplayName),
	}, true
}
