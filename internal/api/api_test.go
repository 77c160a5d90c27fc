package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Levii22/planning-poker/internal/api"
	"github.com/Levii22/planning-poker/internal/api/apierr"
	"github.com/Levii22/planning-poker/internal/api/response"
	"github.com/Levii22/planning-poker/internal/factory"
)

// testServer creates a router with all dependencies wired
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Rooms:      app.RoomController,
		Sessions:   app.SessionService,
		Hub:        app.Hub,
		Dispatcher: app.Dispatcher,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// createRoom seeds one room directly through the controller
func (ts *testServer) createRoom(t *testing.T, code, hostName string) {
	t.Helper()
	ts.app.MockRandom.QueueString(code)
	_, err := ts.app.RoomController.CreateRoom(context.Background(), hostName)
	require.NoError(t, err)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "AB12", "Ann")

	rr := ts.get("/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)

	var health response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Rooms)
	assert.Equal(t, 0, health.Sessions)
	assert.Equal(t, 0, health.Clients)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "AB12", "Ann")

	rr := ts.get("/api/v1/rooms/AB12")
	assert.Equal(t, http.StatusOK, rr.Code)

	var summary response.RoomSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, "AB12", summary.RoomCode)
	assert.Equal(t, "waiting", summary.State)
	assert.Equal(t, 1, summary.PlayerCount)
	assert.Equal(t, ts.app.MockClock.Now(), summary.CreatedAt)
}

func TestGetRoomNormalizesCase(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "AB12", "Ann")

	rr := ts.get("/api/v1/rooms/ab12")
	assert.Equal(t, http.StatusOK, rr.Code)

	var summary response.RoomSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, "AB12", summary.RoomCode)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/v1/rooms/ZZZZ")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeRoomNotFound, resp.Error.Code)
}

func TestGetRoomRejectsMalformedCode(t *testing.T) {
	ts := newTestServer(t)

	for _, code := range []string{"TOOLONG", "AB", "AB-2"} {
		rr := ts.get("/api/v1/rooms/" + code)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "code %q", code)

		var resp apierr.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, apierr.CodeInvalidRoomCode, resp.Error.Code)
	}
}

func TestRoomSummaryHidesMembers(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "AB12", "Ann")
	_, err := ts.app.RoomController.JoinRoom(context.Background(), "AB12", "Bob")
	require.NoError(t, err)

	rr := ts.get("/api/v1/rooms/AB12")
	assert.Equal(t, http.StatusOK, rr.Code)

	// Only the count crosses the API, never names or votes
	assert.NotContains(t, rr.Body.String(), "Ann")
	assert.NotContains(t, rr.Body.String(), "Bob")

	var summary response.RoomSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.PlayerCount)
}
