package tracking

import (
	"encoding/json"
	"github.com/go-playground/validator/v10"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"io"
	"net/http"
)

// Handler is the handler for the session and heartbeat API
type Handler struct {
	Service         *Service
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// SessionStart starts a work session
func (handler *Handler) SessionStart(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	body := SessionStart{}
	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil && err != io.EOF {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	if !handler.validate(writer, body) {
		return
	}

	session, err := handler.Service.StartSession(request.Context(), userID, body.ProjectName)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not start session")
		return
	}

	handler.ResponseManager.RespondWithStatus(writer, session, http.StatusCreated)
}

// SessionEnd completes a work session
func (handler *Handler) SessionEnd(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	body := SessionEnd{}
	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	if !handler.validate(writer, body) {
		return
	}

	session, err := handler.Service.EndSession(request.Context(), userID, body)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not end session")
		return
	}

	handler.ResponseManager.Respond(writer, session)
}

// Heartbeat records a heartbeat and responds with 202
func (handler *Handler) Heartbeat(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	body := HeartbeatCreate{}
	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	if !handler.validate(writer, body) {
		return
	}

	_, err = handler.Service.RecordHeartbeat(request.Context(), userID, body)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not record heartbeat")
		return
	}

	handler.ResponseManager.RespondWithStatus(writer, map[string]bool{"ok": true}, http.StatusAccepted)
}

func (handler *Handler) validate(writer http.ResponseWriter, body interface{}) bool {
	v := validator.New()
	err := v.Struct(body)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return false
		}
	}

	return true
}
