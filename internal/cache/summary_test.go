package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/yoointerview/internal/models"
)

type memCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) SetJSON(_ context.Context, key string, val any, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestSummaryCacheLastWriteWins(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	sc := NewSummaryCache(mc, 48*time.Hour)

	require.NoError(t, sc.PutSummary(ctx, "u1", models.InterviewSummary{InterviewID: "a", Duration: 3}))
	require.NoError(t, sc.PutSummary(ctx, "u1", models.InterviewSummary{InterviewID: "b", Duration: 12}))

	got, err := sc.GetSummary(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.InterviewID)
	assert.Equal(t, 12, got.Duration)
	assert.Equal(t, 48*time.Hour, mc.ttls["interview:last_summary:u1"])
	assert.Len(t, mc.data, 1)
}

func TestSummaryCacheMiss(t *testing.T) {
	sc := NewSummaryCache(newMemCache(), time.Hour)

	got, err := sc.GetSummary(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSummaryCacheError(t *testing.T) {
	mc := newMemCache()
	mc.err = errors.New("connection refused")
	sc := NewSummaryCache(mc, time.Hour)

	_, err := sc.GetSummary(context.Background(), "u1")
	assert.Error(t, err)
	assert.Error(t, sc.PutSummary(context.Background(), "u1", models.InterviewSummary{}))
}

func TestSummaryCacheDelete(t *testing.T) {
	ctx := context.Background()
	sc := NewSummaryCache(newMemCache(), time.Hour)
	require.NoError(t, sc.PutSummary(ctx, "u1", models.InterviewSummary{InterviewID: "a"}))
	require.NoError(t, sc.DeleteSummary(ctx, "u1"))

	got, err := sc.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
