package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/internal/store/memstore"
)

const testPassword = "secret123"

type failureCounter struct {
	mu      sync.Mutex
	reasons []string
}

func (c *failureCounter) AuthFailure(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reasons = append(c.reasons, reason)
}

func (c *failureCounter) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reasons) == 0 {
		return ""
	}
	return c.reasons[len(c.reasons)-1]
}

type testAPI struct {
	router   *chi.Mux
	store    *memstore.Store
	authSvc  *services.AuthService
	failures *failureCounter
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := memstore.New()
	logger := logging.Nop()

	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: []byte("handlers-test"), TTL: 30 * time.Minute})
	require.NoError(t, err)
	ledger := auth.NewLedger(st.Revocations())
	users := st.Users()

	authSvc := services.NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), codec, ledger, nil, logger)
	userSvc := services.NewUserService(users)
	taskSvc := services.NewTaskService(st.Tasks())
	adminSvc := services.NewAdminService(users, st.Stats(), nil, nil, logger)

	failures := &failureCounter{}
	authn := NewAuthenticator(auth.NewResolver(codec, ledger, users, nil), failures, logger)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, authSvc, userSvc, authn, logger)
		})
		r.Route("/tasks", func(r chi.Router) {
			TaskRouter(r, taskSvc, authn, logger)
		})
		r.Route("/admin", func(r chi.Router) {
			AdminRouter(r, adminSvc, authn, logger)
		})
	})

	return &testAPI{router: router, store: st, authSvc: authSvc, failures: failures}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// register signs up email through the API and returns a fresh token.
func (a *testAPI) register(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return a.login(t, email)
}

func (a *testAPI) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	_, err := a.authSvc.CreateAdmin(context.Background(), services.RegisterInput{
		Email:    email,
		Name:     "Admin",
		Password: testPassword,
	})
	require.NoError(t, err)
	return a.login(t, email)
}

func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TokenResponse
	decodeBody(t, rec, &resp)
	return resp.AccessToken
}

func (a *testAPI) userID(t *testing.T, email string) int {
	t.Helper()
	user, err := a.store.Users().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

func itoa(n int) string { return strconv.Itoa(n) }
