package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/analytics"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/team"
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds every request of a Client without custom http.Client
const DefaultTimeout = 30 * time.Second

// APIError is returned for every non 2xx response, Detail is the server's message
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client talks to the tracktivity API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// New constructs a Client, tokens may be nil for a fresh MemoryTokenStore
func New(baseURL string, tokens TokenStore) *Client {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// Tokens returns the token store of the client
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Health calls the health endpoint
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var health map[string]string
	err := c.do(ctx, http.MethodGet, "/", nil, nil, &health)
	return health, err
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, registration users.UserRegistration) (*users.User, error) {
	user := users.User{}
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, registration, &user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login authenticates and stores the access token
func (c *Client) Login(ctx context.Context, usernameOrEmail string, password string) (*users.TokenResponse, error) {
	tokens := users.TokenResponse{}
	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		users.UserLogin{Username: usernameOrEmail, Password: password}, &tokens)
	if err != nil {
		return nil, err
	}

	c.tokens.SetToken(tokens.AccessToken)
	return &tokens, nil
}

// Refresh exchanges a refresh token for a new access token and stores it
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*users.TokenResponse, error) {
	tokens := users.TokenResponse{}
	body := map[string]string{"refresh_token": refreshToken}
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, body, &tokens)
	if err != nil {
		return nil, err
	}

	c.tokens.SetToken(tokens.AccessToken)
	return &tokens, nil
}

// Logout forgets the access token
func (c *Client) Logout() {
	c.tokens.ClearToken()
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	user := users.User{}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// SubmitWorkLog creates or replaces the work log of a day, created is false when it replaced one
func (c *Client) SubmitWorkLog(ctx context.Context, submission activity.WorkLogSubmission) (entry *activity.WorkLogEntry, created bool, err error) {
	entry = &activity.WorkLogEntry{}
	status, err := c.doStatus(ctx, http.MethodPost, "/activity/work-logs", nil, submission, entry)
	if err != nil {
		return nil, false, err
	}

	return entry, status == http.StatusCreated, nil
}

// WorkLogs lists the work logs between from and to, both optional
func (c *Client) WorkLogs(ctx context.Context, from string, to string) ([]activity.WorkLogEntry, error) {
	query := url.Values{}
	setIfNotEmpty(query, "from", from)
	setIfNotEmpty(query, "to", to)

	var entries []activity.WorkLogEntry
	err := c.do(ctx, http.MethodGet, "/activity/work-logs", query, nil, &entries)
	return entries, err
}

// SubmitIdleEpisode records an idle episode
func (c *Client) SubmitIdleEpisode(ctx context.Context, submission activity.IdleEpisodeSubmission) (*activity.IdleEpisode, error) {
	episode := activity.IdleEpisode{}
	err := c.do(ctx, http.MethodPost, "/activity/idle-episodes", nil, submission, &episode)
	if err != nil {
		return nil, err
	}

	return &episode, nil
}

// DailySummary returns the metrics and score of a day, empty meaning today
func (c *Client) DailySummary(ctx context.Context, day string) (*analytics.DailySummary, error) {
	query := url.Values{}
	setIfNotEmpty(query, "date", day)

	summary := analytics.DailySummary{}
	err := c.do(ctx, http.MethodGet, "/activity/me/daily-summary", query, nil, &summary)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// Burnout returns the burnout assessment, zero lookbackDays and empty endDate use the server defaults
func (c *Client) Burnout(ctx context.Context, lookbackDays int, endDate string) (*analytics.BurnoutAssessment, error) {
	query := url.Values{}
	if lookbackDays != 0 {
		query.Set("lookback_days", strconv.Itoa(lookbackDays))
	}
	setIfNotEmpty(query, "end_date", endDate)

	assessment := analytics.BurnoutAssessment{}
	err := c.do(ctx, http.MethodGet, "/activity/me/burnout", query, nil, &assessment)
	if err != nil {
		return nil, err
	}

	return &assessment, nil
}

// Anomalies returns the anomaly report for endDate, zero lookbackDays and empty endDate use the server defaults
func (c *Client) Anomalies(ctx context.Context, lookbackDays int, endDate string) (*analytics.AnomalyReport, error) {
	query := url.Values{}
	if lookbackDays != 0 {
		query.Set("lookback_days", strconv.Itoa(lookbackDays))
	}
	setIfNotEmpty(query, "end_date", endDate)

	report := analytics.AnomalyReport{}
	err := c.do(ctx, http.MethodGet, "/activity/me/anomaly", query, nil, &report)
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// Heatmap returns the heatmap of the last weeks weeks, zero using the server default
func (c *Client) Heatmap(ctx context.Context, weeks int) ([]analytics.HeatmapPoint, error) {
	query := url.Values{}
	if weeks != 0 {
		query.Set("weeks", strconv.Itoa(weeks))
	}

	var points []analytics.HeatmapPoint
	err := c.do(ctx, http.MethodGet, "/api/v1/analytics/heatmap", query, nil, &points)
	return points, err
}

// StartSession starts a work session
func (c *Client) StartSession(ctx context.Context, projectName *string) (*tracking.Session, error) {
	session := tracking.Session{}
	err := c.do(ctx, http.MethodPost, "/api/v1/sessions/start", nil, tracking.SessionStart{ProjectName: projectName}, &session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// EndSession completes a work session, a nil endTime meaning now
func (c *Client) EndSession(ctx context.Context, sessionID string, endTime *time.Time) (*tracking.Session, error) {
	session := tracking.Session{}
	err := c.do(ctx, http.MethodPost, "/api/v1/sessions/end", nil,
		tracking.SessionEnd{SessionID: sessionID, EndTime: endTime}, &session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Heartbeat sends a heartbeat for a running session
func (c *Client) Heartbeat(ctx context.Context, heartbeat tracking.HeartbeatCreate) error {
	return c.do(ctx, http.MethodPost, "/api/v1/heartbeat", nil, heartbeat, nil)
}

// TeamPresence returns the presence of the caller's team
func (c *Client) TeamPresence(ctx context.Context) ([]team.MemberPresence, error) {
	var presences []team.MemberPresence
	err := c.do(ctx, http.MethodGet, "/api/v1/team/presence", nil, nil, &presences)
	return presences, err
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body interface{}, result interface{}) error {
	_, err := c.doStatus(ctx, method, path, query, body, result)
	return err
}

func (c *Client) doStatus(ctx context.Context, method string, path string, query url.Values, body interface{},
	result interface{}) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "could not encode request body")
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, errors.Wrap(err, "could not create request")
	}
	request.Header.Set("Content-Type", "application/json")
	if token := c.tokens.GetToken(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, errors.Wrap(err, "could not read response")
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		if response.StatusCode == http.StatusUnauthorized {
			c.tokens.ClearToken()
		}

		return response.StatusCode, newAPIError(response.StatusCode, data)
	}

	if result == nil || len(data) == 0 {
		return response.StatusCode, nil
	}

	err = json.Unmarshal(data, result)
	if err != nil {
		return response.StatusCode, errors.Wrap(err, "could not decode response")
	}

	return response.StatusCode, nil
}

func newAPIError(status int, body []byte) *APIError {
	detail := communication.ErrorResponse{}
	err := json.Unmarshal(body, &detail)
	if err != nil || detail.Detail == "" {
		return &APIError{StatusCode: status, Detail: fmt.Sprintf("HTTP %d", status)}
	}

	return &APIError{StatusCode: status, Detail: detail.Detail}
}

func setIfNotEmpty(query url.Values, key string, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
