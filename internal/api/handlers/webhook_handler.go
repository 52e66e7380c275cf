package handlers

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/utils"
	"github.com/yoockh/yoointerview/internal/voice"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives the voice service's server messages and feeds them
// to the controller that owns the call.
type WebhookHandler struct {
	sessions *interview.Registry
	secret   string
	log      *logrus.Logger
	now      func() time.Time
}

func NewWebhookHandler(sessions *interview.Registry, secret string, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{sessions: sessions, secret: secret, log: log, now: time.Now}
}

func (h *WebhookHandler) Vapi(c *gin.Context) {
	const op = "WebhookHandler.Vapi"

	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Vapi-Secret")), []byte(h.secret)) != 1 {
		writeError(c, utils.E(utils.CodeUnauthorized, op, "invalid webhook secret", nil))
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "unreadable body", err))
		return
	}

	callID, events, err := voice.ParseServerMessage(body, h.now())
	switch {
	case errors.Is(err, voice.ErrNoCallID):
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid payload", err))
		return
	}
	if len(events) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	ctl, ok := h.sessions.ByCall(callID)
	if !ok {
		// calls opened by a previous process or already finished
		h.log.WithField("call_id", callID).Debug("webhook for unknown call")
		c.Status(http.StatusNoContent)
		return
	}
	// saves run in the background so the delivery is acknowledged at once
	for _, ev := range events {
		ctl.Dispatch(c.Request.Context(), ev)
	}
	c.Status(http.StatusNoContent)
}
