package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipebox/internal/auth"
	"recipebox/internal/metrics"
	"recipebox/internal/repository/sqlite"
	"recipebox/internal/service"
)

const cookieName = "accessToken"

type testServer struct {
	router *gin.Engine
	users  service.UserService
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	users, err := service.NewUserService(repo, hasher, tokens)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := metrics.NewAuth()
	authn := auth.NewRequestAuthenticator(tokens, users, auth.WithRejectionObserver(m))

	router := gin.New()
	NewHandler(users, authn, m, logger, Options{
		CookieName: cookieName,
		TokenTTL:   tokens.TTL(),
	}).RegisterRoutes(router)

	return testServer{router: router, users: users, tokens: tokens}
}

// register returns the new user's id and token.
func (s testServer) register(t *testing.T, username string) (string, string) {
	t.Helper()
	user, token, err := s.users.Register(context.Background(), username, "secret123")
	require.NoError(t, err)
	return user.ID, token
}

func (s testServer) admin(t *testing.T, username string) (string, string) {
	t.Helper()
	user, err := s.users.CreateAdmin(context.Background(), username, "secret123")
	require.NoError(t, err)
	token, err := s.tokens.Sign(user.ID)
	require.NoError(t, err)
	return user.ID, token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	apitest.New().
		Handler(s.router).
		Get("/api/health").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"ok":"ok"}`).
		HeaderPresent(requestIDHeader).
		End()
}

func TestLoginIssuesToken(t *testing.T) {
	s := newTestServer(t)
	aliceID, _ := s.register(t, "alice")

	res := apitest.New().
		Handler(s.router).
		Post("/api/login").
		JSON(`{"username":"alice","password":"secret123"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.user.id`, aliceID)).
		Assert(jsonpath.Equal(`$.user.username`, "alice")).
		Assert(jsonpath.Equal(`$.user.isAdmin`, false)).
		Assert(jsonpath.Present(`$.user.createdAt`)).
		Assert(jsonpath.NotPresent(`$.user.passwordHash`)).
		Assert(jsonpath.Present(`$.accessToken`)).
		CookiePresent(cookieName).
		End()

	var token string
	for _, c := range res.Response.Cookies() {
		if c.Name == cookieName {
			token = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, token)

	for i := 0; i < 2; i++ {
		userID, err := s.tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, aliceID, userID)
	}
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")

	for _, body := range []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"anything"}`,
	} {
		apitest.New().
			Handler(s.router).
			Post("/api/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"error":"Invalid username or password."}`).
			End()
	}
}

func TestLoginMissingArguments(t *testing.T) {
	s := newTestServer(t)

	apitest.New().
		Handler(s.router).
		Post("/api/login").
		JSON(`{"password":"secret123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Username is required."}`).
		End()

	apitest.New().
		Handler(s.router).
		Post("/api/login").
		JSON(`{"username":"alice"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Password is required."}`).
		End()
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	apitest.New().
		Handler(s.router).
		Post("/api/users").
		JSON(`{"username":"alice","password":"secret123"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.user.username`, "alice")).
		Assert(jsonpath.Equal(`$.user.isAdmin`, false)).
		Assert(jsonpath.Present(`$.accessToken`)).
		CookiePresent(cookieName).
		End()

	apitest.New().
		Handler(s.router).
		Post("/api/users").
		JSON(`{"username":"alice","password":"secret123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Username is already taken."}`).
		End()

	apitest.New().
		Handler(s.router).
		Post("/api/users").
		JSON(`{"username":"al","password":"secret123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Username must be at least 3 characters."}`).
		End()

	apitest.New().
		Handler(s.router).
		Post("/api/users").
		JSON(`{"username":"carol"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Password is missing."}`).
		End()

	apitest.New().
		Handler(s.router).
		Get("/api/users").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 1)).
		Assert(jsonpath.NotPresent(`$[0].passwordHash`)).
		End()
}

func TestUpdateOtherUserIsForbidden(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register(t, "alice")
	bobID, _ := s.register(t, "bob")

	apitest.New().
		Handler(s.router).
		Patch("/api/users/"+bobID).
		Header("Authorization", "Bearer "+aliceToken).
		JSON(`{"username":"robert"}`).
		Expect(t).
		Status(http.StatusForbidden).
		Body(`{"error":"Unauthorized"}`).
		End()
}

func TestUpdateOtherUserIsForbiddenBeforeValidation(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register(t, "alice")
	bobID, _ := s.register(t, "bobby")

	for _, body := range []string{`{"color":"red"}`, `{}`, `not json`} {
		apitest.New().
			Handler(s.router).
			Patch("/api/users/"+bobID).
			Cookie(cookieName, aliceToken).
			Body(body).
			Header("Content-Type", "application/json").
			Expect(t).
			Status(http.StatusForbidden).
			Body(`{"error":"Unauthorized"}`).
			End()
	}
}

func TestOverlongPasswordIsRejected(t *testing.T) {
	s := newTestServer(t)
	password := strings.Repeat("😀", 20)

	apitest.New().
		Handler(s.router).
		Post("/api/users").
		JSON(`{"username":"alice","password":"` + password + `"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Password must be at most 72 bytes."}`).
		End()

	bobID, bobToken := s.register(t, "bob")
	apitest.New().
		Handler(s.router).
		Patch("/api/users/"+bobID).
		Cookie(cookieName, bobToken).
		JSON(`{"password":"` + password + `"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Password must be at most 72 bytes."}`).
		End()
}

func TestAdminCanPromote(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t, "root")
	bobID, _ := s.register(t, "bob")

	apitest.New().
		Handler(s.router).
		Patch("/api/users/"+bobID).
		Cookie(cookieName, adminToken).
		JSON(`{"isAdmin":true}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.id`, bobID)).
		Assert(jsonpath.Equal(`$.isAdmin`, true)).
		End()

	isAdmin, err := s.users.IsAdmin(context.Background(), bobID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func TestSelfEscalationIsBlocked(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.register(t, "alice")

	for _, body := range []string{`{"isAdmin":true}`, `{"isAdmin":false}`} {
		apitest.New().
			Handler(s.router).
			Patch("/api/users/"+aliceID).
			Cookie(cookieName, aliceToken).
			JSON(body).
			Expect(t).
			Status(http.StatusForbidden).
			Body(`{"error":"Unauthorized"}`).
			End()
	}

	apitest.New().
		Handler(s.router).
		Patch("/api/users/"+aliceID).
		Cookie(cookieName, aliceToken).
		JSON(`{"username":" alicia "}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.username`, "alicia")).
		End()
}

func TestUpdateRejectsInvalidProperties(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.register(t, "alice")

	apitest.New().
		Handler(s.router).
		Patch("/api/users/"+aliceID).
		Cookie(cookieName, aliceToken).
		JSON(`{"createdAt":"0","nickname":"al"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"Invalid properties: createdAt, nickname"}`).
		End()

	apitest.New().
		Handler(s.router).
		Patch("/api/users/"+aliceID).
		Cookie(cookieName, aliceToken).
		JSON(`{}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"error":"No properties to update."}`).
		End()
}

func TestDeleteWithoutToken(t *testing.T) {
	s := newTestServer(t)

	apitest.New().
		Handler(s.router).
		Delete("/api/users/3").
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"error":"Access token is missing"}`).
		End()
}

func TestDeleteSelfThenTokenUserVanished(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.register(t, "alice")

	apitest.New().
		Handler(s.router).
		Delete("/api/users/"+aliceID).
		Header("Authorization", "Bearer "+aliceToken).
		Expect(t).
		Status(http.StatusOK).
		Body(`{}`).
		End()

	apitest.New().
		Handler(s.router).
		Get("/api/users/"+aliceID).
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"error":"User not found"}`).
		End()

	apitest.New().
		Handler(s.router).
		Get("/api/users/me").
		Header("Authorization", "Bearer "+aliceToken).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register(t, "alice")

	for _, header := range []string{"Basic " + aliceToken, aliceToken, "Bearer"} {
		apitest.New().
			Handler(s.router).
			Get("/api/users/me").
			Header("Authorization", header).
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"error":"Invalid access token"}`).
			End()
	}
}

func TestSessionIsOptional(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.register(t, "alice")

	apitest.New().
		Handler(s.router).
		Get("/api/session").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user":null}`).
		End()

	apitest.New().
		Handler(s.router).
		Get("/api/session").
		Header("Authorization", "Token garbage").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user":null}`).
		End()

	apitest.New().
		Handler(s.router).
		Get("/api/session").
		Cookie(cookieName, "not-a-jwt").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user":null}`).
		End()

	apitest.New().
		Handler(s.router).
		Get("/api/session").
		Cookie(cookieName, aliceToken).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.user.id`, aliceID)).
		End()
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)

	res := apitest.New().
		Handler(s.router).
		Post("/api/logout").
		Expect(t).
		Status(http.StatusOK).
		Body(`{}`).
		End()

	var cleared bool
	for _, c := range res.Response.Cookies() {
		if c.Name == cookieName {
			cleared = c.MaxAge < 0 && c.Value == ""
		}
	}
	assert.True(t, cleared)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	apitest.New().
		Handler(s.router).
		Get("/api/session").
		Cookie(cookieName, "not-a-jwt").
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(s.router).
		Get("/metrics").
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, _ *http.Request) error {
			body, err := io.ReadAll(res.Body)
			if err != nil {
				return err
			}
			assert.Contains(t, string(body), `recipebox_auth_token_rejections_total{mode="optional",reason="invalid_token"} 1`)
			return nil
		}).
		End()
}
