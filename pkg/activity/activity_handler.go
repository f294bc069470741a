package activity

import (
	"encoding/json"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
	"time"
)

var now = time.Now

// DefaultListDays is the range the work log list covers when no range is given
const DefaultListDays = 30

// MaxListDays is the largest range the work log list accepts
const MaxListDays = 366

// Handler handles all activity submissions
type Handler struct {
	Repository      RepositoryInterface
	UserRepository  users.UserRepositoryInterface
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
	IdleThreshold   time.Duration
}

// WorkLogCreate stores a work log, responding 201 for a new date and 200 when an entry was replaced
func (handler *Handler) WorkLogCreate(writer http.ResponseWriter, request *http.Request) {
	user, ok := handler.currentUser(writer, request)
	if !ok {
		return
	}

	submission := WorkLogSubmission{}
	err := json.NewDecoder(request.Body).Decode(&submission)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	entry, err := submission.ToEntry(user.ID, user.Location(), now())
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "")
		return
	}

	created, err := handler.Repository.UpsertWorkLog(request.Context(), entry)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not store work log")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	handler.ResponseManager.RespondWithStatus(writer, entry, status)
}

// WorkLogList lists the work logs between from and to, both YYYY-MM-DD and inclusive
func (handler *Handler) WorkLogList(writer http.ResponseWriter, request *http.Request) {
	user, ok := handler.currentUser(writer, request)
	if !ok {
		return
	}

	location := user.Location()
	to := date.StartOfDay(now().In(location))
	from := to.AddDate(0, 0, -(DefaultListDays - 1))

	var err error
	if value := request.URL.Query().Get("to"); value != "" {
		to, err = date.ParseDay(value, location)
		if err != nil {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "to must have the format YYYY-MM-DD", err)
			return
		}
		from = to.AddDate(0, 0, -(DefaultListDays - 1))
	}

	if value := request.URL.Query().Get("from"); value != "" {
		from, err = date.ParseDay(value, location)
		if err != nil {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "from must have the format YYYY-MM-DD", err)
			return
		}
	}

	if from.After(to) {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "from must not be after to", nil)
		return
	}

	if to.Sub(from) > MaxListDays*24*time.Hour {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "range must not exceed 366 days", nil)
		return
	}

	entries, err := handler.Repository.FindWorkLogsBetween(request.Context(), user.ID.Hex(),
		from.Format(date.Layout), to.Format(date.Layout))
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not find work logs")
		return
	}

	handler.ResponseManager.Respond(writer, entries)
}

// IdleEpisodeCreate appends an idle episode
func (handler *Handler) IdleEpisodeCreate(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, apperror.Auth("Could not validate credentials.", err), "")
		return
	}

	submission := IdleEpisodeSubmission{}
	err = json.NewDecoder(request.Body).Decode(&submission)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	episode, err := submission.ToEpisode(userObjectID, handler.IdleThreshold)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "")
		return
	}

	err = handler.Repository.AddIdleEpisode(request.Context(), episode)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not store idle episode")
		return
	}

	handler.ResponseManager.RespondWithStatus(writer, episode, http.StatusCreated)
}

func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) (*users.User, bool) {
	userID, _ := auth.UserIDFromContext(request.Context())

	user, err := users.Current(request.Context(), handler.UserRepository, userID)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not find user")
		return nil, false
	}

	return user, true
}
