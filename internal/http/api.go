package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"recipebox/internal/apperror"
	"recipebox/internal/auth"
	"recipebox/internal/domain"
	"recipebox/internal/metrics"
	"recipebox/internal/service"
)

// Options carries the transport settings of the handler.
type Options struct {
	CookieName   string
	CookieSecure bool
	TokenTTL     time.Duration
	AllowOrigin  string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	authn   *auth.RequestAuthenticator
	metrics *metrics.Auth
	logger  *logrus.Logger
	opts    Options
}

func NewHandler(users service.UserService, authn *auth.RequestAuthenticator, m *metrics.Auth, logger *logrus.Logger, opts Options) *Handler {
	return &Handler{
		users:   users,
		authn:   authn,
		metrics: m,
		logger:  logger,
		opts:    opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware(h.opts.AllowOrigin))

	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)
		api.GET("/session", h.authenticate(auth.Optional), h.session)

		api.GET("/users", h.listUsers)
		api.POST("/users", h.createUser)
		api.GET("/users/me", h.authenticate(auth.Required), h.me)
		api.GET("/users/:id", h.getUser)
		api.PATCH("/users/:id", h.authenticate(auth.Required), h.updateUser)
		api.DELETE("/users/:id", h.authenticate(auth.Required), h.deleteUser)
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindBadRequest, apperror.ErrBadRequest.Message, err))
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	h.metrics.LoginAttempt(err)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, authResponse{User: userToResponse(*user), AccessToken: token})
}

func (h *Handler) logout(c *gin.Context) {
	h.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) session(c *gin.Context) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToResponse(*user)})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindBadRequest, apperror.ErrBadRequest.Message, err))
		return
	}
	if req.Username == "" {
		h.respondError(c, apperror.New(apperror.KindBadRequest, "Username is missing."))
		return
	}
	if req.Password == "" {
		h.respondError(c, apperror.New(apperror.KindBadRequest, "Password is missing."))
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, authResponse{User: userToResponse(*user), AccessToken: token})
}

func (h *Handler) me(c *gin.Context) {
	id, _ := auth.IdentityFrom(c.Request.Context())
	user, err := h.users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

// updateUser checks ownership before reading the body; the admin-field
// lockdown needs the parsed patch and runs after it.
func (h *Handler) updateUser(c *gin.Context) {
	targetID := c.Param("id")
	id, _ := auth.IdentityFrom(c.Request.Context())
	if err := auth.Authorize(id, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindBadRequest, apperror.ErrBadRequest.Message, err))
		return
	}

	patch, err := service.ParseUserPatch(raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := auth.AuthorizeMutation(id, targetID, patch); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), targetID, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	targetID := c.Param("id")
	id, _ := auth.IdentityFrom(c.Request.Context())
	if err := auth.Authorize(id, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), targetID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, token, int(h.opts.TokenTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.CookieSecure, true)
}

// respondError is the single place expected failures become status codes.
// Anything outside the taxonomy is logged and hidden behind a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok || !appErr.Exposed() {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	h.logger.WithError(err).WithField("kind", appErr.Kind.String()).Debug("request rejected")
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{"error": appErr.Message})
}
