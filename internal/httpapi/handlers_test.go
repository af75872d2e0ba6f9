package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"usermgmt/internal/auth"
	"usermgmt/internal/logging"
	"usermgmt/internal/users"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenManager("test-secret", "TestIssuer", "TestAudience", time.Hour)
	require.NoError(t, err)

	repo := users.NewInMemoryRepository()
	svc := users.NewService(repo, auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewRouter(log, svc, tokens), tokens
}

func perform(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func registerBody(username, email string) map[string]any {
	return map[string]any{
		"username": username,
		"email":    email,
		"password": "Secure123!",
	}
}

func TestHealthLine(t *testing.T) {
	r, _ := newTestRouter(t)

	w := perform(t, r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Users API is running", w.Body.String())
}

func TestRegister_ReturnsToken(t *testing.T) {
	r, tokens := newTestRouter(t)

	w := perform(t, r, http.MethodPost, "/api/auth/register", registerBody("alice", "alice@x.com"), "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok, "token missing in %v", body)

	ident, err := tokens.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "alice", ident.Username)
	require.Equal(t, users.DefaultRole, ident.Role)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	body := registerBody("alice", "alice@x.com")
	body["password"] = "alllowercase"

	w := perform(t, r, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateUsernameMessage(t *testing.T) {
	r, _ := newTestRouter(t)

	w := perform(t, r, http.MethodPost, "/api/auth/register", registerBody("alice", "alice@x.com"), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, r, http.MethodPost, "/api/auth/register", registerBody("alice", "bob@x.com"), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decodeBody(t, w)["message"], "Username")
}

func TestLogin_UniformUnauthorized(t *testing.T) {
	r, _ := newTestRouter(t)

	w := perform(t, r, http.MethodPost, "/api/auth/register", registerBody("alice", "alice@x.com"), "")
	require.Equal(t, http.StatusOK, w.Code)

	wrongPassword := perform(t, r, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "alice@x.com", "password": "WrongPass1!"}, "")
	unknownEmail := perform(t, r, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "nobody@x.com", "password": "Secure123!"}, "")

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProtectedRoutes_RequireBearerToken(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"missing header", func(req *http.Request) {}},
		{"wrong scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic abc") }},
		{"garbage token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer not.a.jwt") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCreateUser_ReturnsPublicViewOnly(t *testing.T) {
	r, tokens := newTestRouter(t)

	token, err := tokens.Issue(99, "caller", "caller@x.com", users.DefaultRole)
	require.NoError(t, err)

	w := perform(t, r, http.MethodPost, "/api/users", registerBody("bob", "bob@x.com"), token)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, "bob", body["username"])
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "passwordHash")
	require.NotContains(t, body, "token")
}

func TestGetUser_InvalidID(t *testing.T) {
	r, tokens := newTestRouter(t)

	token, err := tokens.Issue(1, "u", "u@x.com", users.DefaultRole)
	require.NoError(t, err)

	w := perform(t, r, http.MethodGet, "/api/users/abc", nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUser_NotFoundAndConflict(t *testing.T) {
	r, tokens := newTestRouter(t)

	token, err := tokens.Issue(1, "u", "u@x.com", users.DefaultRole)
	require.NoError(t, err)

	w := perform(t, r, http.MethodPost, "/api/users", registerBody("alice", "alice@x.com"), token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = perform(t, r, http.MethodPost, "/api/users", registerBody("bob", "bob@x.com"), token)
	require.Equal(t, http.StatusCreated, w.Code)
	bobID := int64(decodeBody(t, w)["id"].(float64))

	w = perform(t, r, http.MethodPut, "/api/users/9999",
		map[string]any{"username": "ghost", "email": "ghost@x.com"}, token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, r, http.MethodPut, "/api/users/"+strconv.FormatInt(bobID, 10),
		map[string]any{"username": "bob", "email": "alice@x.com"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decodeBody(t, w)["message"], "Email")
}

// Full end-to-end pass over the API surface.
func TestUserLifecycleScenario(t *testing.T) {
	r, tokens := newTestRouter(t)

	// Register alice.
	w := perform(t, r, http.MethodPost, "/api/auth/register",
		map[string]any{"username": "alice", "email": "alice@x.com", "password": "Secure123!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, decodeBody(t, w), "token")

	// Same username again: rejected, message names the username field.
	w = perform(t, r, http.MethodPost, "/api/auth/register",
		map[string]any{"username": "alice", "email": "bob@x.com", "password": "Secure123!"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decodeBody(t, w)["message"], "Username")

	// Wrong password: unauthenticated.
	w = perform(t, r, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "alice@x.com", "password": "WrongPass1!"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct password: token whose decoded role is User.
	w = perform(t, r, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "alice@x.com", "password": "Secure123!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	aliceToken := decodeBody(t, w)["token"].(string)

	ident, err := tokens.Validate(aliceToken)
	require.NoError(t, err)
	require.Equal(t, users.DefaultRole, ident.Role)
	aliceID := strconv.FormatInt(ident.UserID, 10)

	// Delete by a non-Admin token: denied.
	w = perform(t, r, http.MethodDelete, "/api/users/"+aliceID, nil, aliceToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Delete by an Admin token: success.
	adminToken, err := tokens.Issue(999, "admin", "admin@x.com", users.RoleAdmin)
	require.NoError(t, err)
	w = perform(t, r, http.MethodDelete, "/api/users/"+aliceID, nil, adminToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Subsequent get: not found.
	w = perform(t, r, http.MethodGet, "/api/users/"+aliceID, nil, adminToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Deleting again reports not found.
	w = perform(t, r, http.MethodDelete, "/api/users/"+aliceID, nil, adminToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsers(t *testing.T) {
	r, tokens := newTestRouter(t)

	token, err := tokens.Issue(1, "u", "u@x.com", users.DefaultRole)
	require.NoError(t, err)

	for _, name := range []string{"alice", "bob"} {
		w := perform(t, r, http.MethodPost, "/api/users", registerBody(name, name+"@x.com"), token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := perform(t, r, http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	require.Equal(t, "alice", list[0]["username"])
	require.Equal(t, "bob", list[1]["username"])
}
