package users

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth/jwt"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"time"
)

var now = time.Now

// Handler is the handler for user API calls
type Handler struct {
	UserRepository      UserRepositoryInterface
	Logger              logger.Interface
	ResponseManager     *communication.ResponseManager
	Secret              string
	AccessTokenLifetime time.Duration
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// UserRegister is the route for registering a user
func (handler *Handler) UserRegister(writer http.ResponseWriter, request *http.Request) {
	registration := UserRegistration{}
	err := json.NewDecoder(request.Body).Decode(&registration)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong format", err)
		return
	}

	v := validator.New()
	err = v.Struct(registration)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	if registration.TimeZone == "" {
		registration.TimeZone = DefaultTimeZone
	}

	_, err = time.LoadLocation(registration.TimeZone)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			fmt.Sprintf("Timezone %s does not exist", registration.TimeZone), err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem hashing password", err)
		return
	}

	user := User{
		Username: registration.Username,
		Email:    registration.Email,
		Password: string(hashedPassword),
		FullName: registration.FullName,
		IsActive: true,
		TimeZone: registration.TimeZone,
		TeamID:   registration.TeamID,
	}

	err = handler.UserRepository.Add(request.Context(), &user)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "User couldn't be persisted in the database")
		return
	}

	handler.Logger.Info(fmt.Sprintf("registered user %s", user.ID.Hex()))

	handler.ResponseManager.RespondWithStatus(writer, &user, http.StatusCreated)
}

// UserLogin is the route for user authentication
func (handler *Handler) UserLogin(writer http.ResponseWriter, request *http.Request) {
	userLogin := UserLogin{}
	err := json.NewDecoder(request.Body).Decode(&userLogin)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong format", err)
		return
	}

	v := validator.New()
	err = v.Struct(userLogin)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	user, err := handler.UserRepository.FindByUsernameOrEmail(request.Context(), userLogin.Username)
	if err != nil && !apperror.IsNotFound(err) {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not look up user", err)
		return
	}
	if user == nil {
		handler.ResponseManager.RespondWithAppError(writer, apperror.Auth("Incorrect username or password", err), "")
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(userLogin.Password))
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, apperror.Auth("Incorrect username or password", err), "")
		return
	}

	if !user.IsActive {
		handler.ResponseManager.RespondWithError(writer, http.StatusForbidden, "Inactive user", nil)
		return
	}

	accessToken, err := handler.signToken(user.ID.Hex(), jwt.TokenTypeAccess, handler.AccessTokenLifetime)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem signing access token", err)
		return
	}

	refreshToken, err := handler.signToken(user.ID.Hex(), jwt.TokenTypeRefresh, jwt.RefreshTokenLifetime)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem signing refresh token", err)
		return
	}

	handler.ResponseManager.Respond(writer, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// UserRefresh refreshes a users access token with a new one by providing a refresh token
func (handler *Handler) UserRefresh(writer http.ResponseWriter, request *http.Request) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{}

	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong format", err)
		return
	}

	if body.RefreshToken == "" {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"No refresh token specified", nil)
		return
	}

	refreshToken, err := jwt.Verify(body.RefreshToken, jwt.TokenTypeRefresh, handler.Secret, jwt.AlgHS256)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, apperror.Auth("Could not validate credentials.", err), "")
		return
	}

	user, err := handler.UserRepository.FindByID(request.Context(), refreshToken.Payload.Subject)
	if err != nil || !user.IsActive {
		handler.ResponseManager.RespondWithAppError(writer, apperror.Auth("Could not validate credentials.", err), "")
		return
	}

	accessToken, err := handler.signToken(user.ID.Hex(), jwt.TokenTypeAccess, handler.AccessTokenLifetime)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem signing access token", err)
		return
	}

	handler.ResponseManager.Respond(writer, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

// UserGet retrieves the authenticated user
func (handler *Handler) UserGet(writer http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	u, err := Current(request.Context(), handler.UserRepository, userID)
	if err != nil {
		handler.ResponseManager.RespondWithAppError(writer, err, "Could not find user")
		return
	}

	handler.ResponseManager.Respond(writer, u)
}

func (handler *Handler) signToken(subject string, tokenType string, lifetime time.Duration) (string, error) {
	token := jwt.New(jwt.AlgHS256, jwt.NewClaims(subject, tokenType, lifetime, now()))
	return token.Sign(handler.Secret)
}
