package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"profile-service/internal/auth"
	"profile-service/internal/config"
	"profile-service/internal/mocks"
	"profile-service/internal/models"
	"profile-service/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler http.Handler
	repo    *mocks.MockUserRepository
	hasher  *auth.BcryptHasher
	dir     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	app := &config.Application{
		Config: config.Config{
			App_Env:              "test",
			CORS_Allowed_Origins: []string{"http://localhost:3000"},
			RequestTimeout:       5,
			StorageBackend:       "local",
			UploadDir:            dir,
			UploadURLPrefix:      "/uploads/profile",
		},
		Logger: zerolog.Nop(),
	}

	repo := new(mocks.MockUserRepository)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour)
	photos := new(mocks.MockPhotoService)
	users := service.NewUserService(repo, hasher, tokens, photos, zerolog.Nop())

	return &testServer{
		handler: Setup(app, Dependencies{Users: users, Photos: photos, Tokens: tokens, Probe: repo}),
		repo:    repo,
		hasher:  hasher,
		dir:     dir,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginThenMe(t *testing.T) {
	s := newTestServer(t)
	hash, err := s.hasher.Hash("secret1")
	require.NoError(t, err)
	user := &models.User{UserID: "u-1", Username: "ada", Email: "a@x.com", PasswordHash: hash}

	s.repo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
	s.repo.On("FindByID", mock.Anything, "u-1").Return(user, nil).Once()

	// Login
	raw, _ := json.Marshal(models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(raw)))
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	// /me with the token returns the same user
	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "u-1", me.UserID)

	// /me without a token, or with a malformed one, is rejected before the store is touched
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = s.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.repo.AssertExpectations(t)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/user/me"},
		{http.MethodPut, "/api/user/update"},
		{http.MethodDelete, "/api/user/delete"},
		{http.MethodPost, "/api/user/photo"},
		{http.MethodDelete, "/api/user/photo"},
	}
	for _, route := range routes {
		rec := s.do(httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestStatusRoute(t *testing.T) {
	s := newTestServer(t)
	s.repo.On("Now", mock.Anything).Return(time.Now(), nil).Once()

	rec := s.do(httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"database":"ON"`)
}

func TestUploadsAreServed(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "user-1.png"), []byte("png"), 0o644))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/uploads/profile/user-1.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/uploads/profile/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := s.do(req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
