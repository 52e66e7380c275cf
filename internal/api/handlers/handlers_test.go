package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
)

const webhookSecret = "hook-secret"

type fakeVoice struct {
	mu      sync.Mutex
	openErr error
	n       int
	closed  []string
}

func (v *fakeVoice) Open(context.Context, string) (interview.Call, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.openErr != nil {
		return interview.Call{}, v.openErr
	}
	v.n++
	id := "call-" + string(rune('0'+v.n))
	return interview.Call{ID: id, WebCallURL: "https://rooms.example/" + id, ControlURL: "https://control.example/" + id}, nil
}

func (v *fakeVoice) Close(_ context.Context, call interview.Call) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = append(v.closed, call.ID)
	return nil
}

type fakeRepo struct {
	mu      sync.Mutex
	records []*models.Interview
}

func (r *fakeRepo) Append(_ context.Context, rec *models.Interview) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return "rec-1", nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type testServer struct {
	router   *gin.Engine
	registry *interview.Registry
	voice    *fakeVoice
	repo     *fakeRepo
	logs     *test.Hook
}

// asUser stands in for JWTAuth: the X-Test-User header becomes the caller.
func asUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(middleware.KeyUserID, uid)
			c.Set(middleware.KeyEmail, uid+"@example.com")
			c.Set(middleware.KeyAccessToken, "token-"+uid)
		}
		c.Next()
	}
}

func newTestServer(t *testing.T, configErr error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	s := &testServer{voice: &fakeVoice{}, repo: &fakeRepo{}, logs: hook}
	s.registry = interview.NewRegistry(interview.Deps{
		Voice:       s.voice,
		AssistantID: "assistant-1",
		ConfigErr:   configErr,
		Saver:       &interview.Saver{Repo: s.repo, Logger: log},
		Logger:      log,
	})

	r := gin.New()
	r.POST("/webhooks/vapi", NewWebhookHandler(s.registry, webhookSecret, log).Vapi)

	auth := r.Group("/", asUser())
	ih := NewInterviewHandler(s.registry)
	auth.POST("/interview/start", ih.Start)
	auth.POST("/interview/stop", ih.Stop)
	auth.POST("/interview/clear", ih.Clear)
	auth.GET("/interview/state", ih.State)

	s.router = r
	return s
}

func (s *testServer) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) webhook(t *testing.T, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/vapi", bytes.NewReader([]byte(payload)))
	req.Header.Set("X-Vapi-Secret", webhookSecret)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var errUpstream = errors.New("assistant not found")
