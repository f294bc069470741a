package analytics

import (
	"fmt"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"net/http"
	"strconv"
)

// Handler serves the analytics endpoints
type Handler struct {
	Service         *Service
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// DailySummary responds with the metrics and score of ?date=YYYY-MM-DD, today by default
func (handler *Handler) DailySummary(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	summary, err := handler.Service.DailySummary(request.Context(), userID, request.URL.Query().Get("date"))
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not compute daily summary")
		return
	}

	handler.ResponseManager.Respond(writer, summary)
}

// Burnout responds with the burnout assessment for ?lookback_days=N&end_date=YYYY-MM-DD
func (handler *Handler) Burnout(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	lookbackDays, ok := handler.intQuery(writer, request, "lookback_days", handler.Service.Config().Burnout.DefaultLookbackDays)
	if !ok {
		return
	}

	assessment, err := handler.Service.Burnout(request.Context(), userID, lookbackDays, request.URL.Query().Get("end_date"))
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not assess burnout risk")
		return
	}

	handler.ResponseManager.Respond(writer, assessment)
}

// Anomaly responds with the anomaly report for ?end_date=YYYY-MM-DD over ?lookback_days=N days
func (handler *Handler) Anomaly(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	lookbackDays, ok := handler.intQuery(writer, request, "lookback_days", handler.Service.Config().Anomaly.WindowDays)
	if !ok {
		return
	}

	report, err := handler.Service.Anomalies(request.Context(), userID, lookbackDays, request.URL.Query().Get("end_date"))
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not detect anomalies")
		return
	}

	handler.ResponseManager.Respond(writer, report)
}

// Heatmap responds with the productivity heatmap of the last ?weeks=N weeks
func (handler *Handler) Heatmap(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	weeks, ok := handler.intQuery(writer, request, "weeks", handler.Service.Config().Heatmap.DefaultWeeks)
	if !ok {
		return
	}

	points, err := handler.Service.Heatmap(request.Context(), userID, weeks)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not build heatmap")
		return
	}

	handler.ResponseManager.Respond(writer, points)
}

// intQuery parses an optional integer query parameter
func (handler *Handler) intQuery(writer http.ResponseWriter, request *http.Request, name string, fallback int) (int, bool) {
	value := request.URL.Query().Get(name)
	if value == "" {
		return fallback, true
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			fmt.Sprintf("%s must be an integer", name), err)
		return 0, false
	}

	return parsed, true
}
