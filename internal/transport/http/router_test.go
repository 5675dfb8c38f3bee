package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
	redisinfra "github.com/go-auth-api/internal/infrastructure/redis"
	"github.com/go-auth-api/internal/infrastructure/token"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo is an in-memory UserRepository for router tests.
type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*domain.User)}
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Get(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Put(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.UserID] = &cp
	return nil
}

func (r *memUserRepo) SetVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Verified = true
	return nil
}

// recordingNotifier captures the last delivered code instead of sending mail.
type recordingNotifier struct {
	mu       sync.Mutex
	lastCode string
	lastAddr string
}

func (n *recordingNotifier) Deliver(_ context.Context, address, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastAddr = address
	n.lastCode = code
	return nil
}

func (n *recordingNotifier) last() (string, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastAddr, n.lastCode
}

type testEnv struct {
	router   http.Handler
	repo     *memUserRepo
	notifier *recordingNotifier
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		AppEnv:               "test",
		AllowedOrigins:       []string{"*"},
		AccessTokenLifetime:  time.Hour,
		RefreshTokenLifetime: 24 * time.Hour,
		OTPLifetime:          time.Hour,
	}
	repo := newMemUserRepo()
	notifier := &recordingNotifier{}
	router := NewRouter(cfg, &Deps{
		UserRepo: repo,
		KV:       redisinfra.NewKV(client),
		Notifier: notifier,
		Codec:    token.NewCodec("test-secret"),
	})
	return &testEnv{router: router, repo: repo, notifier: notifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestSignupVerifyFlow(t *testing.T) {
	env := setupEnv(t)

	rr := env.do(t, http.MethodPost, "/v1/auth/signup",
		map[string]string{"email": "a@x.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	addr, code := env.notifier.last()
	assert.Equal(t, "a@x.com", addr)
	require.Len(t, code, 6)

	// Duplicate signup: conflict, and no new code goes out.
	rr = env.do(t, http.MethodPost, "/v1/auth/signup",
		map[string]string{"email": "a@x.com", "password": "password1"}, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Wrong code is rejected and non-destructive.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	rr = env.do(t, http.MethodPost, "/v1/auth/verify",
		map[string]string{"email": "a@x.com", "code": wrong}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/auth/verify",
		map[string]string{"email": "a@x.com", "code": code}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	u, err := env.repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.Verified)

	// The code is consumed: replaying it fails.
	rr = env.do(t, http.MethodPost, "/v1/auth/verify",
		map[string]string{"email": "a@x.com", "code": code}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginRefreshFlow(t *testing.T) {
	env := setupEnv(t)

	rr := env.do(t, http.MethodPost, "/v1/auth/signup",
		map[string]string{"email": "a@x.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "wrong-password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tokens struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokens))
	assert.Equal(t, "bearer", tokens.TokenType)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	// The refresh token also rides an HTTP-only cookie.
	var refreshCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)
	assert.True(t, refreshCookie.HttpOnly)
	assert.Equal(t, int((24 * time.Hour).Seconds()), refreshCookie.MaxAge)

	// Access token authorizes /me.
	rr = env.do(t, http.MethodGet, "/v1/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	})
	require.Equal(t, http.StatusOK, rr.Code)

	// Refresh mints a new access token for the same subject.
	rr = env.do(t, http.MethodGet, "/v1/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(refreshCookie)
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	rr = env.do(t, http.MethodGet, "/v1/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+refreshed.AccessToken)
	})
	var me struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "a@x.com", me.User.Email)

	// An access token in the refresh cookie is the wrong type: rejected.
	rr = env.do(t, http.MethodGet, "/v1/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refresh_token", Value: tokens.AccessToken})
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// A refresh token in the bearer header is the wrong type: rejected.
	rr = env.do(t, http.MethodGet, "/v1/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tokens.RefreshToken)
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_NoCookie(t *testing.T) {
	env := setupEnv(t)

	rr := env.do(t, http.MethodGet, "/v1/auth/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	env := setupEnv(t)

	rr := env.do(t, http.MethodGet, "/v1/health-check", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
