package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

type fakeHistory struct {
	list    []models.Interview
	records map[string]*models.Interview
	summary *models.InterviewSummary
	err     error
}

func (f *fakeHistory) List(context.Context, string) ([]models.Interview, error) {
	return f.list, f.err
}

func (f *fakeHistory) Get(_ context.Context, userID, id string) (*models.Interview, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, utils.E(utils.CodeNotFound, "HistoryService.Get", "interview not found", utils.ErrNotFound)
	}
	if rec.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, "HistoryService.Get", "forbidden", nil)
	}
	return rec, nil
}

func (f *fakeHistory) LastSummary(context.Context, string) (*models.InterviewSummary, error) {
	return f.summary, f.err
}

func newHistoryServer(h *fakeHistory) *testServer {
	gin.SetMode(gin.TestMode)
	hh := NewHistoryHandler(h)
	r := gin.New()
	auth := r.Group("/", asUser())
	auth.GET("/interviews", hh.List)
	auth.GET("/interviews/last-summary", hh.LastSummary)
	auth.GET("/interviews/:id", hh.Get)
	return &testServer{router: r}
}

func TestHistoryListEmpty(t *testing.T) {
	s := newHistoryServer(&fakeHistory{list: []models.Interview{}})

	w := s.do(http.MethodGet, "/interviews", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"interviews":[]}`, w.Body.String())
}

func TestHistoryListUnauthenticated(t *testing.T) {
	s := newHistoryServer(&fakeHistory{})
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/interviews", "", nil).Code)
}

func TestHistoryGet(t *testing.T) {
	s := newHistoryServer(&fakeHistory{records: map[string]*models.Interview{
		"a": {ID: "a", UserID: "u1", Conclusion: "Good practice session - keep practicing regularly."},
		"b": {ID: "b", UserID: "u2"},
	}})

	w := s.do(http.MethodGet, "/interviews/a", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a", decode[models.Interview](t, w).ID)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/interviews/b", "u1", nil).Code)

	w = s.do(http.MethodGet, "/interviews/zzz", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, utils.CodeNotFound, decode[APIError](t, w).Code)
}

func TestHistoryLastSummary(t *testing.T) {
	h := &fakeHistory{}
	s := newHistoryServer(h)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodGet, "/interviews/last-summary", "u1", nil).Code)

	h.summary = &models.InterviewSummary{InterviewID: "a", Duration: 7, Text: "Practice Session - General"}
	w := s.do(http.MethodGet, "/interviews/last-summary", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, decode[models.InterviewSummary](t, w).Duration)

	h.err = utils.E(utils.CodeUnavailable, "HistoryService.LastSummary", "summary cache unavailable", nil)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/interviews/last-summary", "u1", nil).Code)
}
