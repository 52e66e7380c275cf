package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoointerview/internal/services"
)

type HistoryHandler struct {
	svc services.HistoryService
}

func NewHistoryHandler(svc services.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

func (h *HistoryHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": list})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// LastSummary answers 204 when nothing is cached.
func (h *HistoryHandler) LastSummary(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	sum, err := h.svc.LastSummary(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sum == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, sum)
}
