package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/yoointerview/internal/interview"
)

// memFeed is an in-process stand-in for the Redis state channel.
type memFeed struct {
	mu   sync.Mutex
	subs map[string][]chan string
}

func newMemFeed() *memFeed { return &memFeed{subs: map[string][]chan string{}} }

func (f *memFeed) Follow(_ context.Context, userID string) (<-chan string, func() error, error) {
	ch := make(chan string, 32)
	f.mu.Lock()
	f.subs[userID] = append(f.subs[userID], ch)
	f.mu.Unlock()
	return ch, func() error { return nil }, nil
}

func (f *memFeed) Notify(_ context.Context, userID string, st interview.State) {
	b, _ := json.Marshal(wsServerMsg{Type: "state", State: &st})
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[userID] {
		select {
		case ch <- string(b):
		default:
		}
	}
}

func newWSServer(t *testing.T) (*httptest.Server, *fakeVoice) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, _ := test.NewNullLogger()
	feed := newMemFeed()
	voice := &fakeVoice{}
	registry := interview.NewRegistry(interview.Deps{
		Voice:       voice,
		AssistantID: "assistant-1",
		Saver:       &interview.Saver{Repo: &fakeRepo{}, Logger: log},
		Notifier:    feed,
		Logger:      log,
	})

	r := gin.New()
	r.GET("/ws/interview", asUser(), NewWSHandler(registry, feed, log, nil).InterviewWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, voice
}

func dialWS(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/interview"
	hdr := http.Header{}
	hdr.Set("X-Test-User", user)
	conn, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) wsServerMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsServerMsg
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(wsServerMsg) bool) wsServerMsg {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readMsg(t, conn)
		if msg.Type == typ && (match == nil || match(msg)) {
			return msg
		}
	}
	t.Fatalf("no %q message received", typ)
	return wsServerMsg{}
}

func TestWSSendsSnapshotOnConnect(t *testing.T) {
	srv, _ := newWSServer(t)
	conn := dialWS(t, srv, "u1")

	msg := readMsg(t, conn)
	assert.Equal(t, "state", msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, interview.StatusIdle, msg.State.Status.Kind)
}

func TestWSStartCommand(t *testing.T) {
	srv, voice := newWSServer(t)
	conn := dialWS(t, srv, "u1")
	readMsg(t, conn)

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "start"}))

	call := readUntil(t, conn, "call", nil)
	require.NotNil(t, call.Call)
	assert.Equal(t, "call-1", call.Call.ID)
	assert.Equal(t, 1, voice.n)

	st := readUntil(t, conn, "state", func(m wsServerMsg) bool { return m.State.CallID == "call-1" })
	assert.Equal(t, interview.StatusConnecting, st.State.Status.Kind)
}

func TestWSRejectsUnknownCommand(t *testing.T) {
	srv, _ := newWSServer(t)
	conn := dialWS(t, srv, "u1")
	readMsg(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	msg := readUntil(t, conn, "error", nil)
	assert.Equal(t, "INVALID_ARGUMENT", string(msg.Code))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{oops`)))
	msg = readUntil(t, conn, "error", nil)
	assert.Equal(t, "invalid json", msg.Message)
}

func TestWSRequiresUser(t *testing.T) {
	srv, _ := newWSServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/interview"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
