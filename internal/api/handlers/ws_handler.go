package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// StateFeed delivers the encoded state messages published for a user.
type StateFeed interface {
	Follow(ctx context.Context, userID string) (<-chan string, func() error, error)
}

type WSHandler struct {
	sessions *interview.Registry
	feed     StateFeed
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions *interview.Registry, feed StateFeed, log *logrus.Logger, allowedOrigins []string) *WSHandler {
	allow := map[string]bool{}
	for _, o := range allowedOrigins {
		allow[o] = true
	}
	return &WSHandler{
		sessions: sessions,
		feed:     feed,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allow) == 0 || origin == "" || allow[origin]
			},
		},
	}
}

type wsClientMsg struct {
	Type string `json:"type"` // start | stop | clear | state
}

type wsServerMsg struct {
	Type    string           `json:"type"`
	State   *interview.State `json:"state,omitempty"`
	Call    *interview.Call  `json:"call,omitempty"`
	Code    utils.Code       `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) write(typ int, b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(typ, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.write(websocket.TextMessage, b)
}

func (w *wsConn) writeError(err error) error {
	code := utils.CodeInternal
	var ae *utils.AppError
	if errors.As(err, &ae) {
		code = ae.Code
	}
	return w.writeJSON(wsServerMsg{Type: "error", Code: code, Message: utils.SafeMessage(err)})
}

// InterviewWS pushes every state change of the caller's session and accepts
// start/stop/clear commands.
func (h *WSHandler) InterviewWS(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	feed, stop, err := h.feed.Follow(ctx, user.ID)
	if err != nil {
		writeError(c, utils.E(utils.CodeUnavailable, "WSHandler.InterviewWS", "live updates unavailable", err))
		return
	}
	defer stop()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	log := h.log.WithField("user_id", user.ID)

	snap := h.sessions.ForUser(&user).Snapshot()
	if err := wc.writeJSON(wsServerMsg{Type: "state", State: &snap}); err != nil {
		return
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}
			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeError(utils.E(utils.CodeInvalidArgument, "", "invalid json", err))
				continue
			}
			h.command(ctx, wc, &user, msg, log)
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := wc.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case payload, ok := <-feed:
			if !ok {
				return
			}
			if err := wc.write(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
	}
}

// command runs one client command. State changes reach the socket through
// the feed; only direct answers are written here. The controller is looked
// up per command since sign-out may have replaced it.
func (h *WSHandler) command(ctx context.Context, wc *wsConn, user *models.User, msg wsClientMsg, log *logrus.Entry) {
	ctl := h.sessions.ForUser(user)
	switch msg.Type {
	case "start":
		call, err := ctl.StartSession(ctx)
		if err != nil {
			_ = wc.writeError(startError(err, ctl.Snapshot()))
			return
		}
		_ = wc.writeJSON(wsServerMsg{Type: "call", Call: &call})

	case "stop":
		if err := ctl.StopSession(ctx); err != nil {
			log.WithError(err).Warn("stop from socket failed")
			_ = wc.writeError(utils.E(utils.CodeUnavailable, "", ctl.Snapshot().Status.Message, err))
		}

	case "clear":
		ctl.ClearTranscript(ctx)

	case "state":
		snap := ctl.Snapshot()
		_ = wc.writeJSON(wsServerMsg{Type: "state", State: &snap})

	default:
		_ = wc.writeError(utils.E(utils.CodeInvalidArgument, "", "unknown message type", nil))
	}
}
