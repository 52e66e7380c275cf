package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/utils"
)

type InterviewHandler struct {
	sessions *interview.Registry
}

func NewInterviewHandler(sessions *interview.Registry) *InterviewHandler {
	return &InterviewHandler{sessions: sessions}
}

type StartResponse struct {
	Call  interview.Call  `json:"call"`
	State interview.State `json:"state"`
}

func (h *InterviewHandler) controller(c *gin.Context) (*interview.Controller, bool) {
	user, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	return h.sessions.ForUser(&user), true
}

func (h *InterviewHandler) Start(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}

	call, err := ctl.StartSession(c.Request.Context())
	if err != nil {
		writeError(c, startError(err, ctl.Snapshot()))
		return
	}
	c.JSON(http.StatusOK, StartResponse{Call: call, State: ctl.Snapshot()})
}

func (h *InterviewHandler) Stop(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctl.StopSession(c.Request.Context()); err != nil {
		writeError(c, utils.E(utils.CodeUnavailable, "InterviewHandler.Stop", ctl.Snapshot().Status.Message, err))
		return
	}
	c.JSON(http.StatusOK, ctl.Snapshot())
}

func (h *InterviewHandler) Clear(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	ctl.ClearTranscript(c.Request.Context())
	c.JSON(http.StatusOK, ctl.Snapshot())
}

func (h *InterviewHandler) State(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctl.Snapshot())
}

// startError maps a failed start to the API contract; the message is the
// status line the controller already shows.
func startError(err error, st interview.State) error {
	const op = "InterviewHandler.Start"
	switch {
	case errors.Is(err, interview.ErrNotConfigured):
		return utils.E(utils.CodeUnavailable, op, st.Status.Message, err)
	case errors.Is(err, interview.ErrNotSignedIn):
		return utils.E(utils.CodeUnauthorized, op, st.Status.Message, err)
	default:
		return utils.E(utils.CodeUnavailable, op, st.Status.Message, err)
	}
}
