package team

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandler_Presence(t *testing.T) {
	env := newPresenceEnvironment(t)
	user := env.addUser(t, "alice", "team-a")
	env.beat(t, user, time.Minute, true)

	log := logger.NewNop()
	handler := Handler{Service: env.service, Logger: log, ResponseManager: &communication.ResponseManager{Logger: log}}

	request := httptest.NewRequest(http.MethodGet, "/api/v1/team/presence", nil)
	request = request.WithContext(auth.WithUserID(request.Context(), user.ID.Hex()))
	recorder := httptest.NewRecorder()

	handler.Presence(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body []map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, map[string]string{
		"userId":   user.ID.Hex(),
		"name":     "alice",
		"email":    "alice@example.com",
		"status":   StatusIdle,
		"timezone": "Europe/Berlin",
	}, body[0])
}
