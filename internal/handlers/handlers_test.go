package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/minitodo/apiserver/internal/notify"
	"github.com/minitodo/apiserver/internal/services"
	"github.com/minitodo/apiserver/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedOtp struct{ code int }

func (f fixedOtp) Generate() (int, error) { return f.code, nil }

type sink struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (s *sink) Notify(ctx context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(t *testing.T) (*chi.Mux, *sink) {
	t.Helper()
	users := store.NewUserRepository()
	outbox := &sink{}
	deps := services.Deps{Otp: fixedOtp{code: 12345}, Notifier: outbox}

	router := chi.NewRouter()
	router.Get("/", Banner)
	router.Get("/healthz", Healthz)
	AccountRouter(router, services.NewAccountService(users, store.NewOtpRepository(), deps, false), zap.NewNop())
	EventRouter(router, services.NewEventService(users, store.NewEventRepository(), deps, false), zap.NewNop())
	return router, outbox
}

func do(t *testing.T, router http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

var signup = map[string]string{
	"title":     "Mr",
	"firstname": "Ada",
	"lastname":  "Lovelace",
	"email":     "a@x.com",
	"password":  "Secret1",
}

func todo(title, description string) map[string]string {
	return map[string]string{
		"email":       "a@x.com",
		"title":       title,
		"description": description,
		"date":        "2026-03-02",
		"time":        "07:30",
	}
}

func TestBannerAndHealthz(t *testing.T) {
	router, _ := newRouter(t)

	code, env := do(t, router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
	assert.Equal(t, "Welcome to my mini todo app. We are here to help you keep events", env.Message)

	code, env = do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
}

func TestAccountFlow(t *testing.T) {
	router, outbox := newRouter(t)

	code, env := do(t, router, http.MethodPost, "/signup", signup)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
	assert.Equal(t, "Kindly use the OTP to verify your account for complete account craetion.", env.Message)
	require.Len(t, outbox.msgs, 1)
	assert.Contains(t, outbox.msgs[0].Body, "12345")

	code, env = do(t, router, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "Secret1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Status)
	assert.Equal(t, services.ErrAccountNotActive.Error(), env.Message)

	code, env = do(t, router, http.MethodGet, "/verify-otp/a@x.com/99999", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid Email or OTP", env.Message)

	code, env = do(t, router, http.MethodGet, "/verify-otp/a%40x.com/12345", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sign up has been done successfully.", env.Message)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "active", users[0]["status"])
	assert.Equal(t, "Ada", users[0]["firstname"])
	assert.NotContains(t, users[0], "salt")
	assert.NotContains(t, users[0], "password")
	assert.NotContains(t, users[0], "PasswordHash")

	code, env = do(t, router, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "Secret1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "You are logged in", env.Message)

	code, env = do(t, router, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid password", env.Message)

	code, env = do(t, router, http.MethodPost, "/login", map[string]string{"email": "b@x.com", "password": "Secret1"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User does not exist", env.Message)
}

func TestVerifyOtp_NonNumericCode(t *testing.T) {
	router, _ := newRouter(t)
	code, env := do(t, router, http.MethodGet, "/verify-otp/a@x.com/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid Email or OTP", env.Message)
}

func TestResendOtp(t *testing.T) {
	router, outbox := newRouter(t)

	code, env := do(t, router, http.MethodGet, "/resend-otp/a@x.com", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Status)
	assert.Equal(t, "Email does not exist", env.Message)

	_, _ = do(t, router, http.MethodPost, "/signup", signup)
	code, env = do(t, router, http.MethodGet, "/resend-otp/a@x.com", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "An OTP has been resent.", env.Message)
	require.Len(t, outbox.msgs, 2)
	assert.Equal(t, "OTP resend", outbox.msgs[1].Subject)
}

func TestSignupValidation(t *testing.T) {
	router, _ := newRouter(t)

	with := func(key, value string) map[string]string {
		body := map[string]string{}
		for k, v := range signup {
			body[k] = v
		}
		if value == "" {
			delete(body, key)
		} else {
			body[key] = value
		}
		return body
	}

	tests := []struct {
		name string
		body any
		want string
	}{
		{name: "bad title", body: with("title", "Dr"), want: `"title" must be one of [Mr, Mrs, Miss]`},
		{name: "missing firstname", body: with("firstname", ""), want: `"firstname" is required`},
		{name: "bad email", body: with("email", "not-an-email"), want: `"email" must be a valid email`},
		{name: "missing password", body: with("password", ""), want: `"password" is required`},
		{name: "unknown field", body: with("nickname", "ada"), want: `"nickname" is not allowed`},
		{name: "wrong type", body: `{"title": 1}`, want: `"title" must be a string`},
		{name: "empty body", body: "", want: "Request body is required"},
		{name: "malformed", body: "{", want: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, router, http.MethodPost, "/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Status)
			assert.Equal(t, tt.want, env.Message)
		})
	}
}

func TestEventFlow(t *testing.T) {
	router, _ := newRouter(t)

	code, env := do(t, router, http.MethodPost, "/create/todo", todo("Gym session", "Leg day at the gym"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User does not exist", env.Message)

	_, _ = do(t, router, http.MethodPost, "/signup", signup)
	code, env = do(t, router, http.MethodPost, "/create/todo", todo("Gym session", "Leg day at the gym"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.ErrAccountNotActive.Error(), env.Message)

	_, _ = do(t, router, http.MethodGet, "/verify-otp/a@x.com/12345", nil)

	code, env = do(t, router, http.MethodPost, "/create/todo", todo("Gym session", "Leg day at the gym"))
	require.Equal(t, http.StatusOK, code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Upcoming", created["status"])
	id, _ := created["todoId"].(string)
	require.NotEmpty(t, id)

	code, env = do(t, router, http.MethodPost, "/create/todo", todo("Gym session", "Something different"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.ErrDuplicateEvent.Error(), env.Message)

	code, env = do(t, router, http.MethodPut, "/todo/update/"+id, todo("Evening swim", "Twenty laps in the pool"))
	require.Equal(t, http.StatusOK, code)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Evening swim", events[0]["title"])
	assert.Equal(t, id, events[0]["todoId"])

	body := todo("Evening swim", "Twenty laps in the pool")
	body["email"] = "nobody@x.com"
	code, env = do(t, router, http.MethodPut, "/todo/update/"+id, body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User does not exist", env.Message)
}

func TestTodoValidation(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "short title", key: "title", value: "Gym", want: `"title" length must be at least 5 characters long`},
		{name: "short description", key: "description", value: "Legs", want: `"description" length must be at least 5 characters long`},
		{name: "long description", key: "description", value: strings.Repeat("x", 5001), want: `"description" length must be less than or equal to 5000 characters long`},
		{name: "bad date", key: "date", value: "02/03/2026", want: `"date" must be a valid date in YYYY-MM-DD format`},
		{name: "impossible date", key: "date", value: "2026-02-30", want: `"date" must be a valid date in YYYY-MM-DD format`},
		{name: "bad time", key: "time", value: "24:00", want: `"time" must be a valid time in HH:MM format`},
		{name: "unpadded time", key: "time", value: "7:30", want: `"time" must be a valid time in HH:MM format`},
		{name: "bad email", key: "email", value: "a-at-x", want: `"email" must be a valid email`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := todo("Gym session", "Leg day at the gym")
			body[tt.key] = tt.value
			code, env := do(t, router, http.MethodPost, "/create/todo", body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, env.Message)
		})
	}
}

func TestValidate_Result(t *testing.T) {
	ok := Validate(LoginRequest{Email: "a@x.com", Password: "Secret1"})
	assert.True(t, ok.OK())
	assert.Equal(t, "a@x.com", ok.Value.Email)
	assert.Empty(t, ok.First())

	bad := Validate(LoginRequest{})
	assert.False(t, bad.OK())
	assert.Equal(t, []string{`"email" is required`, `"password" is required`}, bad.Errors)
	assert.Equal(t, `"email" is required`, bad.First())
}

func TestWriteServiceError_Unexpected(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.NewNop(), assert.AnError, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":false`)
}

func TestPathParam_DecodesOnce(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain", path: "/resend-otp/a@x.com", want: "a@x.com"},
		{name: "escaped at sign", path: "/resend-otp/a%40x.com", want: "a@x.com"},
		{name: "escaped percent", path: "/resend-otp/a%2541b@x.com", want: "a%41b@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			router := chi.NewRouter()
			router.Get("/resend-otp/{email}", func(w http.ResponseWriter, r *http.Request) {
				got = pathParam(r, "email")
			})
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}
