package app

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/analytics"
	"github.com/tracktivity-app/tracktivity-backend/pkg/client"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"github.com/tracktivity-app/tracktivity-backend/pkg/environment"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"github.com/tracktivity-app/tracktivity-backend/pkg/team"
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*httptest.Server, *Dependencies) {
	env := environment.Defaults()
	env.Secret = "test-secret"
	env.DatabaseURL = MemoryDatabaseURL

	deps, err := Connect(context.Background(), &env, logger.NewNop())
	require.NoError(t, err)

	server := httptest.NewServer(NewHandler(&env, deps, analytics.DefaultConfig(), logger.NewNop()))
	t.Cleanup(func() {
		server.Close()
		_ = deps.Close(context.Background())
	})

	return server, deps
}

func float(value float64) *float64 {
	return &value
}

func integer(value int) *int {
	return &value
}

func TestAPI_EndToEnd(t *testing.T) {
	ctx := context.Background()
	server, _ := newTestServer(t)

	alice := client.New(server.URL, nil)
	bob := client.New(server.URL, nil)

	health, err := alice.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "running", "service": ServiceName}, health)

	for _, registration := range []users.UserRegistration{
		{Username: "alice", Email: "alice@example.com", Password: "correct-horse", TeamID: "core"},
		{Username: "bob", Email: "bob@example.com", Password: "battery-staple", TeamID: "core"},
	} {
		_, err = alice.Register(ctx, registration)
		require.NoError(t, err)
	}

	_, err = alice.Register(ctx, users.UserRegistration{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
	assert.True(t, client.IsStatus(err, http.StatusConflict))

	_, err = alice.Me(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	_, err = alice.Login(ctx, "alice", "wrong-password")
	assert.EqualError(t, err, "Incorrect username or password")

	_, err = alice.Login(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	tokens, err := bob.Login(ctx, "bob", "battery-staple")
	require.NoError(t, err)

	me, err := alice.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, users.DefaultTimeZone, me.TimeZone)

	t.Run("work logs and analytics", func(t *testing.T) {
		today := time.Now().UTC().Format(date.Layout)
		submission := activity.WorkLogSubmission{
			Date:             today,
			TotalTrackedTime: float(480),
			ActiveTime:       float(420),
			DeepWorkTime:     float(180),
			TasksCompleted:   integer(4),
			TasksStarted:     integer(5),
			ContextSwitches:  integer(10),
			BreaksTaken:      integer(3),
		}

		_, created, err := alice.SubmitWorkLog(ctx, submission)
		require.NoError(t, err)
		assert.True(t, created)

		_, created, err = alice.SubmitWorkLog(ctx, submission)
		require.NoError(t, err)
		assert.False(t, created)

		entries, err := alice.WorkLogs(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, entries, 1)

		submission.TasksStarted = nil
		_, _, err = alice.SubmitWorkLog(ctx, submission)
		assert.True(t, client.IsStatus(err, http.StatusBadRequest))
		assert.Contains(t, err.Error(), "tasks_started")

		summary, err := alice.DailySummary(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, today, summary.Date)
		assert.Greater(t, summary.ProductivityScore.Score, 0.0)

		_, err = bob.DailySummary(ctx, today)
		assert.True(t, client.IsStatus(err, http.StatusNotFound))

		_, err = alice.Burnout(ctx, 0, "")
		assert.True(t, client.IsStatus(err, http.StatusUnprocessableEntity))
		assert.Contains(t, err.Error(), "Not enough data")

		_, err = alice.Anomalies(ctx, 0, "")
		assert.True(t, client.IsStatus(err, http.StatusUnprocessableEntity))
	})

	t.Run("sessions, heatmap and presence", func(t *testing.T) {
		session, err := alice.StartSession(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, tracking.StatusActive, session.Status)

		_, err = alice.StartSession(ctx, nil)
		assert.True(t, client.IsStatus(err, http.StatusConflict))

		err = alice.Heartbeat(ctx, tracking.HeartbeatCreate{SessionID: session.ID.Hex()})
		require.NoError(t, err)

		err = bob.Heartbeat(ctx, tracking.HeartbeatCreate{SessionID: session.ID.Hex()})
		assert.True(t, client.IsStatus(err, http.StatusNotFound))

		points, err := alice.Heatmap(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, points, 168)

		presences, err := bob.TeamPresence(ctx)
		require.NoError(t, err)
		require.Len(t, presences, 2)
		assert.Equal(t, team.StatusActive, presences[0].Status)
		assert.Equal(t, team.StatusOffline, presences[1].Status)

		ended, err := alice.EndSession(ctx, session.ID.Hex(), nil)
		require.NoError(t, err)
		assert.Equal(t, tracking.StatusCompleted, ended.Status)
	})

	t.Run("refresh", func(t *testing.T) {
		bob.Logout()
		_, err := bob.Refresh(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		assert.True(t, bob.Tokens().IsAuthenticated())

		_, err = bob.Refresh(ctx, "not-a-token")
		assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
		assert.False(t, bob.Tokens().IsAuthenticated())
	})
}

func TestAPI_RevokedAccounts(t *testing.T) {
	ctx := context.Background()
	server, deps := newTestServer(t)

	login := func(username string) (*client.Client, string) {
		c := client.New(server.URL, nil)
		registered, err := c.Register(ctx, users.UserRegistration{
			Username: username, Email: username + "@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		_, err = c.Login(ctx, username, "correct-horse")
		require.NoError(t, err)
		_, err = c.Me(ctx)
		require.NoError(t, err)
		return c, registered.ID.Hex()
	}

	carol, carolID := login("carol")
	deps.Users.(*users.MockUserRepository).Remove(carolID)

	_, err := carol.DailySummary(ctx, "")
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "deleted account: %v", err)
	_, err = carol.Heatmap(ctx, 0)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "deleted account: %v", err)
	_, err = carol.TeamPresence(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "deleted account: %v", err)

	dave, daveID := login("dave")
	stored, err := deps.Users.FindByID(ctx, daveID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, deps.Users.Update(ctx, stored))

	_, err = dave.DailySummary(ctx, "")
	assert.True(t, client.IsStatus(err, http.StatusForbidden), "inactive account: %v", err)
	_, err = dave.Me(ctx)
	assert.True(t, client.IsStatus(err, http.StatusForbidden), "inactive account: %v", err)
}

func TestAPI_Metrics(t *testing.T) {
	server, _ := newTestServer(t)

	_, err := client.New(server.URL, nil).Health(context.Background())
	require.NoError(t, err)

	response, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `tracktivity_http_requests_total{method="GET",route="/",status="200"} 1`))
}

func TestAPI_Middleware(t *testing.T) {
	server, _ := newTestServer(t)

	request, err := http.NewRequest(http.MethodOptions, server.URL+"/activity/work-logs", nil)
	require.NoError(t, err)
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
	assert.Equal(t, "*", response.Header.Get("Access-Control-Allow-Origin"))

	response, err = http.Get(server.URL + "/")
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, "application/json", response.Header.Get("Content-Type"))
	assert.NotEmpty(t, response.Header.Get(HeaderRequestID))

	request, err = http.NewRequest(http.MethodGet, server.URL+"/", nil)
	require.NoError(t, err)
	request.Header.Set(HeaderRequestID, "6f1c1f0e-4a7d-4a4e-9a57-3f0f3c1f2a10")
	response, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, "6f1c1f0e-4a7d-4a4e-9a57-3f0f3c1f2a10", response.Header.Get(HeaderRequestID))
}
