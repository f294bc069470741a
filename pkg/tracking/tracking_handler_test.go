package tracking

import (
	"bytes"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_SessionFlow(t *testing.T) {
	service, _ := newTestService()
	log := logger.NewNop()
	handler := Handler{Service: service, Logger: log, ResponseManager: &communication.ResponseManager{Logger: log}}
	userID := primitive.NewObjectID().Hex()

	call := func(handlerFunc http.HandlerFunc, body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		request = request.WithContext(auth.WithUserID(request.Context(), userID))
		recorder := httptest.NewRecorder()
		handlerFunc(recorder, request)
		return recorder
	}

	recorder := call(handler.SessionStart, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	session := Session{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &session))

	recorder = call(handler.SessionStart, `{"project_name": "second"}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = call(handler.Heartbeat, `{"session_id": "`+session.ID.Hex()+`", "is_idle": false}`)
	assert.Equal(t, http.StatusAccepted, recorder.Code)

	recorder = call(handler.Heartbeat, `{"session_id": "not-an-id"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = call(handler.Heartbeat, `{"session_id": "`+session.ID.Hex()+`", "timestamp": "2099-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "timestamp")

	recorder = call(handler.SessionEnd, `{"session_id": "`+session.ID.Hex()+`"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &session))
	assert.Equal(t, StatusCompleted, session.Status)

	recorder = call(handler.Heartbeat, `{"session_id": "`+session.ID.Hex()+`"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
