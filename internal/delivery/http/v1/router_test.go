package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-todo-backend/config"
	"go-todo-backend/internal/delivery/http/middleware"
	"go-todo-backend/internal/delivery/http/response"
	v1 "go-todo-backend/internal/delivery/http/v1"
	"go-todo-backend/internal/domain"
	"go-todo-backend/internal/repository/cache"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/auth"
)

const jwtSecret = "router-test-secret-router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router   *gin.Engine
	authUC   *MockAuthUC
	taskUC   *MockTaskUC
	adminUC  *MockAdminUC
	deleteUC *MockDeletionUC
	revoker  *cache.RevocationStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		authUC:   new(MockAuthUC),
		taskUC:   new(MockTaskUC),
		adminUC:  new(MockAdminUC),
		deleteUC: new(MockDeletionUC),
		revoker:  cache.NewRevocationStore(nil),
	}
	f.router = v1.NewRouter(v1.RouterDeps{
		AuthUC:     f.authUC,
		TaskUC:     f.taskUC,
		AdminUC:    f.adminUC,
		DeletionUC: f.deleteUC,
		HealthUC: healthFunc(func(context.Context) domain.HealthReport {
			return domain.HealthReport{Status: "operational", Components: map[string]string{"database": "up"}}
		}),
		Verifier: auth.NewVerifier(jwtSecret, nil),
		Revoker:  f.revoker,
		Config: &config.Config{
			FrontendURL:              "http://localhost:3000",
			RateLimitWindowSeconds:   60,
			RateLimitLoginThreshold:  100,
			RateLimitGlobalThreshold: 1000,
		},
	})
	return f
}

func token(t *testing.T, userID string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: userID + "@example.com",
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (f *fixture) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var r response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func sessionFor(userID string) interface{} {
	return mock.MatchedBy(func(s *domain.Session) bool { return s != nil && s.UserID == userID })
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "System operational", envelope(t, w).Message)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestLogin(t *testing.T) {
	t.Run("success sets cookie and redirects to dashboard", func(t *testing.T) {
		f := newFixture(t)
		f.authUC.On("Login", mock.Anything, "a@x.io", "pw").Return(&domain.LoginResult{
			Session:  &domain.AuthSession{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)},
			Profile:  &domain.Profile{ID: "u1", Role: domain.RoleUser},
			Message:  "Login successful.",
			Redirect: domain.RouteDashboard,
		}, nil)

		w := f.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "a@x.io", "password": "pw"})

		require.Equal(t, http.StatusOK, w.Code)
		body := envelope(t, w)
		assert.True(t, body.Success)
		assert.Equal(t, domain.RouteDashboard, body.Redirect)
		assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.AuthCookieName+"=tok")
		assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")
	})

	t.Run("missing password is rejected before the identity service", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "a@x.io"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.authUC.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank email is rejected", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "   ", "password": "pw"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("identity service message is shown verbatim", func(t *testing.T) {
		f := newFixture(t)
		f.authUC.On("Login", mock.Anything, "a@x.io", "bad").
			Return(nil, apperror.Unauthorized("Invalid login credentials"))

		w := f.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "a@x.io", "password": "bad"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid login credentials", envelope(t, w).Message)
	})

	t.Run("blocked account", func(t *testing.T) {
		f := newFixture(t)
		f.authUC.On("Login", mock.Anything, "b@x.io", "pw").
			Return(nil, apperror.Forbidden("Your account is blocked by Admin."))

		w := f.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "b@x.io", "password": "pw"})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Your account is blocked by Admin.", envelope(t, w).Message)
		assert.Empty(t, w.Header().Get("Set-Cookie"))
	})
}

func TestSignup(t *testing.T) {
	f := newFixture(t)
	f.authUC.On("Signup", mock.Anything, "n@x.io", "secret1").Return(&domain.SignupResult{
		User:     &domain.Identity{ID: "u9", Email: "n@x.io"},
		Message:  "Signup successful.",
		Redirect: domain.RouteLogin,
	}, nil)

	w := f.do(t, http.MethodPost, "/v1/auth/signup", "", gin.H{"email": "n@x.io", "password": "secret1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.RouteLogin, envelope(t, w).Redirect)
}

func TestSessionAndLogout(t *testing.T) {
	f := newFixture(t)
	f.authUC.On("GetProfile", mock.Anything, "u1").
		Return(nil, apperror.NotFound("Profile not found for current user."))
	f.authUC.On("Logout", mock.Anything, sessionFor("u1")).Return(nil)

	w := f.do(t, http.MethodGet, "/v1/auth/session", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"profile":null`)

	w = f.do(t, http.MethodPost, "/v1/auth/logout", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RouteLogin, envelope(t, w).Redirect)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestDashboardRequiresSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/v1/dashboard", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domain.RouteLogin, envelope(t, w).Redirect)
	f.taskUC.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "u1")
	require.NoError(t, f.revoker.Revoke(context.Background(), tok, time.Now().Add(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardTasks(t *testing.T) {
	tasks := []domain.Task{{ID: 1, Task: "Buy milk", Status: domain.TaskNotStarted, UserID: "u1"}}
	dash := &domain.Dashboard{
		User:    domain.DashboardUser{ID: "u1"},
		Tasks:   tasks,
		Buckets: domain.Partition(tasks),
	}

	t.Run("load", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("Load", mock.Anything, sessionFor("u1")).Return(dash, nil)

		w := f.do(t, http.MethodGet, "/v1/dashboard", "u1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Buy milk")
	})

	t.Run("add", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("Add", mock.Anything, sessionFor("u1"), "Buy milk").Return(dash, true, nil)

		w := f.do(t, http.MethodPost, "/v1/dashboard/tasks", "u1", gin.H{"task": "Buy milk"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"added":true`)
	})

	t.Run("blank add is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("Add", mock.Anything, sessionFor("u1"), "  ").Return(dash, false, nil)

		w := f.do(t, http.MethodPost, "/v1/dashboard/tasks", "u1", gin.H{"task": "  "})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"added":false`)
	})

	t.Run("toggle", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("ToggleStatus", mock.Anything, sessionFor("u1"), int64(1)).Return(dash, nil)

		w := f.do(t, http.MethodPatch, "/v1/dashboard/tasks/1/toggle", "u1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("toggle missing task", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("ToggleStatus", mock.Anything, sessionFor("u1"), int64(42)).
			Return(nil, apperror.NotFound("Task not found"))

		w := f.do(t, http.MethodPatch, "/v1/dashboard/tasks/42/toggle", "u1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non numeric id", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(t, http.MethodPatch, "/v1/dashboard/tasks/abc/toggle", "u1", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.taskUC.AssertNotCalled(t, "ToggleStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete reports rows affected", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("Delete", mock.Anything, sessionFor("u1"), int64(7)).Return(dash, int64(0), nil)

		w := f.do(t, http.MethodDelete, "/v1/dashboard/tasks/7", "u1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"rows_affected":0`)
	})

	t.Run("export", func(t *testing.T) {
		f := newFixture(t)
		f.taskUC.On("Export", mock.Anything, sessionFor("u1")).
			Return([]byte("PK"), "tasks_20260101_120000.xlsx", nil)

		w := f.do(t, http.MethodGet, "/v1/dashboard/tasks/export", "u1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "attachment; filename=tasks_20260101_120000.xlsx", w.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/vnd.openxmlformats"))
	})
}

func adminFixture(t *testing.T) (*fixture, *domain.Profile) {
	f := newFixture(t)
	admin := &domain.Profile{ID: "admin-1", Email: "root@x.io", Role: domain.RoleAdmin}
	f.authUC.On("GetProfile", mock.Anything, "admin-1").Return(admin, nil)
	f.authUC.On("GetProfile", mock.Anything, "u1").Return(&domain.Profile{ID: "u1", Role: domain.RoleUser}, nil)
	return f, admin
}

func TestAdminUsers(t *testing.T) {
	users := []domain.Profile{{ID: "admin-1", Role: domain.RoleAdmin}, {ID: "u2", Role: domain.RoleUser}}

	t.Run("non-admin is sent back to the dashboard", func(t *testing.T) {
		f, _ := adminFixture(t)
		w := f.do(t, http.MethodGet, "/v1/admin/users", "u1", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, domain.RouteDashboard, envelope(t, w).Redirect)
		f.adminUC.AssertNotCalled(t, "ListUsers", mock.Anything, mock.Anything)
	})

	t.Run("list", func(t *testing.T) {
		f, admin := adminFixture(t)
		f.adminUC.On("ListUsers", mock.Anything, admin).Return(users, nil)

		w := f.do(t, http.MethodGet, "/v1/admin/users", "admin-1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"me":{"id":"admin-1"`)
		assert.Contains(t, w.Body.String(), `"id":"u2"`)
	})

	t.Run("block", func(t *testing.T) {
		f, admin := adminFixture(t)
		f.adminUC.On("ToggleBlock", mock.Anything, admin, "u2").Return(users, nil)

		w := f.do(t, http.MethodPatch, "/v1/admin/users/u2/block", "admin-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		f.adminUC.AssertExpectations(t)
	})

	t.Run("promote", func(t *testing.T) {
		f, admin := adminFixture(t)
		f.adminUC.On("Promote", mock.Anything, admin, "u2").Return(users, nil)

		w := f.do(t, http.MethodPatch, "/v1/admin/users/u2/promote", "admin-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("hard delete conflict", func(t *testing.T) {
		f, admin := adminFixture(t)
		f.adminUC.On("HardDelete", mock.Anything, admin, "u2").
			Return(nil, apperror.Conflict("deletion already in progress"))

		w := f.do(t, http.MethodDelete, "/v1/admin/users/u2", "admin-1", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteUserEndpoint(t *testing.T) {
	errorBody := func(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
		t.Helper()
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
		return m
	}

	t.Run("success", func(t *testing.T) {
		f, _ := adminFixture(t)
		f.deleteUC.On("DeleteUser", mock.Anything, "u2").Return(&domain.DeletedRows{Profiles: 1, Tasks: 3}, nil)

		w := f.do(t, http.MethodPost, "/api/admin/delete-user", "admin-1", gin.H{"userId": "u2"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("missing user id", func(t *testing.T) {
		f, _ := adminFixture(t)
		f.deleteUC.On("DeleteUser", mock.Anything, "").Return(nil, apperror.BadRequest("userId is required"))

		w := f.do(t, http.MethodPost, "/api/admin/delete-user", "admin-1", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"userId is required"}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		f, _ := adminFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/delete-user", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+token(t, "admin-1"))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "userId is required", errorBody(t, w)["error"])
	})

	t.Run("identity service failure surfaces its message", func(t *testing.T) {
		f, _ := adminFixture(t)
		cause := errors.New("User not allowed")
		f.deleteUC.On("DeleteUser", mock.Anything, "u2").
			Return(nil, apperror.InternalMessage(cause.Error(), cause))

		w := f.do(t, http.MethodPost, "/api/admin/delete-user", "admin-1", gin.H{"userId": "u2"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"User not allowed"}`, w.Body.String())
	})

	t.Run("concurrent run", func(t *testing.T) {
		f, _ := adminFixture(t)
		f.deleteUC.On("DeleteUser", mock.Anything, "u2").
			Return(nil, apperror.Conflict("deletion already in progress"))

		w := f.do(t, http.MethodPost, "/api/admin/delete-user", "admin-1", gin.H{"userId": "u2"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "deletion already in progress", errorBody(t, w)["error"])
	})

	t.Run("non-admin caller", func(t *testing.T) {
		f, _ := adminFixture(t)
		w := f.do(t, http.MethodPost, "/api/admin/delete-user", "u1", gin.H{"userId": "u2"})

		assert.Equal(t, http.StatusForbidden, w.Code)
		f.deleteUC.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}
