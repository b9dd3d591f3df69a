package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clinic-scheduling/internal/delivery/dto"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// AuthResult tells how authentication went for one call.
type AuthResult int

const (
	AuthOk AuthResult = iota
	AuthUnauthorized
	AuthRetried
)

func (r AuthResult) String() string {
	switch r {
	case AuthOk:
		return "ok"
	case AuthUnauthorized:
		return "unauthorized"
	case AuthRetried:
		return "retried"
	}
	return fmt.Sprintf("AuthResult(%d)", int(r))
}

// Client calls the scheduling API on behalf of one Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	log        *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(log *logrus.Logger) Option {
	return func(cl *Client) { cl.log = log }
}

// New builds a client for baseURL, e.g. "https://clinic.example/api/v1".
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type errorBody struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

type call struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	headers map[string]string
	public  bool
}

// do sends c with the session's access token. On 401 it refreshes the
// tokens once and resends. The middleware answers 401 before any handler
// runs, so the resent request was never processed the first time.
func (c *Client) do(ctx context.Context, req call, out interface{}) (AuthResult, error) {
	status, env, err := c.send(ctx, req)
	if err != nil {
		return AuthOk, err
	}

	result := AuthOk
	if status == http.StatusUnauthorized && !req.public {
		if err := c.refresh(ctx); err != nil {
			c.log.Warnf("Failed to refresh session: %v", err)
			return AuthUnauthorized, ErrUnauthorized
		}
		status, env, err = c.send(ctx, req)
		if err != nil {
			return AuthRetried, err
		}
		if status == http.StatusUnauthorized {
			c.session.Clear()
			return AuthUnauthorized, ErrUnauthorized
		}
		result = AuthRetried
	}

	if status < 200 || status >= 300 {
		return result, toAPIError(status, env)
	}
	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return result, ErrEmptyData
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return result, fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
		}
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, req call) (int, *envelope, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.AccessToken(); token != "" && !req.public {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.StatusCode, nil, fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
		}
		env.Message = http.StatusText(resp.StatusCode)
	}
	return resp.StatusCode, env, nil
}

func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return ErrUnauthorized
	}

	status, env, err := c.send(ctx, call{
		method: http.MethodPost,
		path:   "/auth/refresh-token",
		body:   dto.RefreshTokenRequest{RefreshToken: refreshToken},
		public: true,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		c.session.Clear()
		return toAPIError(status, env)
	}

	var tokens dto.TokenResponse
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		return fmt.Errorf("decode refreshed tokens: %w", err)
	}
	c.session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

func toAPIError(status int, env *envelope) *APIError {
	apiErr := &APIError{Status: status, Message: env.Message}
	if len(env.Error) > 0 {
		var body errorBody
		if json.Unmarshal(env.Error, &body) == nil {
			apiErr.Code = body.Code
			apiErr.Fields = body.Fields
		}
	}
	return apiErr
}

// Login exchanges credentials for tokens and stores them on the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var tokens dto.TokenResponse
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   dto.LoginRequest{Email: email, Password: password},
		public: true,
	}, &tokens)
	if err != nil {
		return err
	}
	c.session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

// FetchWeeklySchedule returns the stored entries of a doctor. A doctor who
// never saved a week yields fewer than seven entries.
func (c *Client) FetchWeeklySchedule(ctx context.Context, doctorID uuid.UUID) ([]dto.WeeklyScheduleEntryResponse, error) {
	var week dto.WeeklyScheduleResponse
	if _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/doctors/" + doctorID.String() + "/weekly-schedule",
		public: true,
	}, &week); err != nil {
		return nil, err
	}
	return week.Entries, nil
}

// ReplaceWeeklySchedule stores all seven days of the signed-in doctor.
// A rejected week comes back as *APIError with Reason ValidationFailed.
func (c *Client) ReplaceWeeklySchedule(ctx context.Context, entries []dto.WeeklyScheduleEntryRequest) (*dto.WeeklyScheduleResponse, error) {
	var week dto.WeeklyScheduleResponse
	if _, err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/weekly-schedule/me",
		body:   dto.ReplaceWeeklyScheduleRequest{Entries: entries},
	}, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

// SlotRange selects the dates of a slot listing. Empty dates use the
// server defaults.
type SlotRange struct {
	StartDate     string
	EndDate       string
	AvailableOnly bool
}

func (c *Client) FetchAvailableSlots(ctx context.Context, doctorID uuid.UUID, r SlotRange) ([]dto.TimeSlotResponse, error) {
	q := url.Values{}
	if r.StartDate != "" {
		q.Set("start_date", r.StartDate)
	}
	if r.EndDate != "" {
		q.Set("end_date", r.EndDate)
	}
	if r.AvailableOnly {
		q.Set("available_only", "true")
	}

	var list dto.SlotListResponse
	if _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/doctors/" + doctorID.String() + "/slots",
		query:  q,
		public: true,
	}, &list); err != nil {
		return nil, err
	}
	return list.Slots, nil
}

// BookingResult is the server's verdict on a submitted booking.
type BookingResult struct {
	Confirmed   bool
	Appointment *dto.AppointmentResponse
	Reason      RejectReason
	Status      int
	Message     string
	Fields      map[string]string
	Auth        AuthResult
}

// SubmitBooking sends req once. Server refusals are returned as a result,
// not an error; err is reserved for transport failures and expired sessions.
func (c *Client) SubmitBooking(ctx context.Context, req *dto.BookingRequest) (*BookingResult, error) {
	headers := map[string]string{}
	if req.IdempotencyKey != nil {
		headers["Idempotency-Key"] = req.IdempotencyKey.String()
	}

	var appointment dto.AppointmentResponse
	auth, err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/appointments/book",
		body:    req,
		headers: headers,
	}, &appointment)

	var apiErr *APIError
	switch {
	case err == nil:
		return &BookingResult{Confirmed: true, Appointment: &appointment, Status: http.StatusCreated, Auth: auth}, nil
	case errors.As(err, &apiErr):
		return &BookingResult{
			Reason:  apiErr.Reason(),
			Status:  apiErr.Status,
			Message: apiErr.Message,
			Fields:  apiErr.Fields,
			Auth:    auth,
		}, nil
	default:
		return nil, err
	}
}
