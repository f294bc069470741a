package team

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"net/http"
)

// Handler serves the team endpoints
type Handler struct {
	Service         *Service
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// Presence responds with the presence of the caller's team
func (handler *Handler) Presence(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	presences, err := handler.Service.Presence(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not load team presence")
		return
	}

	handler.ResponseManager.Respond(writer, presences)
}
