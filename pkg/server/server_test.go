package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boozer-app/recap/pkg/recap"
)

func testLog() *logrus.Entry {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logrus.NewEntry(base)
}

func newTestServer() *Server {
	global := &recap.GlobalRecap{
		Consumptions: recap.GlobalConsumptions{Count: 5},
		Items:        recap.GlobalItems{Count: 2, TopItems: []recap.ItemCount{{Name: "Pale Rider", Consumptions: 3}}},
		Users:        recap.GlobalUsers{Count: 2},
		WeeklyCounts: []recap.WeeklyBucket{{WeekStart: "2024-01-01", Consumptions: 5}},
	}
	recaps := []recap.UserRecap{
		{UserID: 1, Recap: recap.Body{Consumptions: recap.ConsumptionStats{ConsumptionCount: 3, Variety: 2}}},
		{UserID: 2, Recap: recap.Body{Consumptions: recap.ConsumptionStats{ConsumptionCount: 2, Variety: 1, Percentile: 50}}},
	}
	return New(global, recaps, 0, testLog())
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestGlobalRecap(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/v1/recap/global")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got recap.GlobalRecap
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.Consumptions.Count)
	assert.Equal(t, "Pale Rider", got.Items.TopItems[0].Name)
}

func TestUserList(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/v1/recap/users")

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data  []recap.UserRecap `json:"data"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Data, 2)
	assert.Equal(t, int64(1), got.Data[0].UserID)
}

func TestUserByID(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/v1/recap/users/2")

	require.Equal(t, http.StatusOK, rec.Code)

	var got recap.UserRecap
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.UserID)
	assert.Equal(t, 50, got.Recap.Consumptions.Percentile)
}

func TestUserNotFound(t *testing.T) {
	// User 3 produced no recap, so they 404 instead of getting an empty
	// document.
	rec := get(t, newTestServer().Handler(), "/api/v1/recap/users/3")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserBadID(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/v1/recap/users/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestServer().Handler()
	for _, path := range []string{"/api/v1/recap/global", "/api/v1/recap/users", "/api/v1/recap/users/1"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}
