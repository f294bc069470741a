package app

import (
	"github.com/gorilla/mux"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/analytics"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/environment"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"github.com/tracktivity-app/tracktivity-backend/pkg/team"
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"net/http"
	"time"
)

// ServiceName is reported by the health endpoint
const ServiceName = "tracktivity-backend"

// NewHandler builds the complete HTTP handler of the API
func NewHandler(env *environment.Environment, deps *Dependencies, analyticsConfig analytics.Config,
	log logger.Interface) http.Handler {
	responseManager := communication.ResponseManager{Logger: log}

	userHandler := users.Handler{
		UserRepository:      deps.Users,
		Logger:              log,
		ResponseManager:     &responseManager,
		Secret:              env.Secret,
		AccessTokenLifetime: env.AccessTokenLifetime(),
	}

	activityHandler := activity.Handler{
		Repository:      deps.Activity,
		UserRepository:  deps.Users,
		Logger:          log,
		ResponseManager: &responseManager,
		IdleThreshold:   time.Duration(env.IdleThresholdMinutes) * time.Minute,
	}

	trackingHandler := tracking.Handler{
		Service:         tracking.NewService(deps.Tracking, deps.Locker, log),
		Logger:          log,
		ResponseManager: &responseManager,
	}

	analyticsService := analytics.NewService(deps.Activity, deps.Tracking, deps.Users, deps.Cache,
		analyticsConfig, log, deps.Metrics)
	analyticsHandler := analytics.Handler{
		Service:         analyticsService,
		Logger:          log,
		ResponseManager: &responseManager,
	}

	teamHandler := team.Handler{
		Service:         team.NewService(deps.Users, deps.Tracking, log),
		Logger:          log,
		ResponseManager: &responseManager,
	}

	authenticationMiddleware := auth.AuthenticationMiddleware{
		ResponseManager: &responseManager,
		Secret:          env.Secret,
		Users:           users.Verifier{Repository: deps.Users},
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(log), deps.Metrics.Middleware)

	r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(contentTypeMiddleware)

	api.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		responseManager.Respond(writer, map[string]string{"status": "running", "service": ServiceName})
	}).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", userHandler.UserRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", userHandler.UserLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", userHandler.UserRefresh).Methods(http.MethodPost)

	authenticated := api.NewRoute().Subrouter()
	authenticated.Use(authenticationMiddleware.Middleware)

	authenticated.HandleFunc("/auth/me", userHandler.UserGet).Methods(http.MethodGet)

	authenticated.HandleFunc("/activity/work-logs", activityHandler.WorkLogCreate).Methods(http.MethodPost)
	authenticated.HandleFunc("/activity/work-logs", activityHandler.WorkLogList).Methods(http.MethodGet)
	authenticated.HandleFunc("/activity/idle-episodes", activityHandler.IdleEpisodeCreate).Methods(http.MethodPost)

	authenticated.HandleFunc("/activity/me/daily-summary", analyticsHandler.DailySummary).Methods(http.MethodGet)
	authenticated.HandleFunc("/activity/me/burnout", analyticsHandler.Burnout).Methods(http.MethodGet)
	authenticated.HandleFunc("/activity/me/anomaly", analyticsHandler.Anomaly).Methods(http.MethodGet)

	authenticated.HandleFunc("/api/v1/sessions/start", trackingHandler.SessionStart).Methods(http.MethodPost)
	authenticated.HandleFunc("/api/v1/sessions/end", trackingHandler.SessionEnd).Methods(http.MethodPost)
	authenticated.HandleFunc("/api/v1/heartbeat", trackingHandler.Heartbeat).Methods(http.MethodPost)

	authenticated.HandleFunc("/api/v1/analytics/heatmap", analyticsHandler.Heatmap).Methods(http.MethodGet)
	authenticated.HandleFunc("/api/v1/team/presence", teamHandler.Presence).Methods(http.MethodGet)

	return corsHandler(env.Cors, r)
}
