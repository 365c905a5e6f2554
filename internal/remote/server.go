package remote

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/auth"
	"github.com/roach88/procount/internal/domain"
)

const ctxTenant = "tenantId"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Server is the reference remote authority.
//
// With a JWT secret every route but /health requires a bearer token whose
// tenantId claim scopes the request. Without one, authentication is off and
// the tenant named in the request is trusted.
type Server struct {
	repo   *Repository
	secret []byte
	log    *logrus.Entry
	clock  domain.Clock
	router *gin.Engine
}

type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.log = l.WithField("module", "remote") }
}

// WithClock sets the clock used for record timestamps.
func WithClock(c domain.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func NewServer(repo *Repository, secret []byte, opts ...Option) *Server {
	s := &Server{
		repo:   repo,
		secret: secret,
		log:    logrus.StandardLogger().WithField("module", "remote"),
		clock:  domain.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.log.Warn("no JWT secret configured, authentication disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(r)
	s.router = r
	return s
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)

	authed := r.Group("/", s.authMiddleware())
	authed.POST("/sync", s.handleSync)
	authed.POST("/notifications/send", s.handleNotification)
	authed.GET("/records/:dataType", s.handleListRecords)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("authority listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}

// authMiddleware puts the token's tenant in the context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.secret) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token format")
			return
		}

		claims, err := auth.ParseToken(s.secret, parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		c.Set(ctxTenant, claims.TenantID)
		c.Next()
	}
}

// tenant returns the tenant the request may act for. requested is the tenant
// named in the request itself; it must match the token's.
func (s *Server) tenant(c *gin.Context, requested string) (string, bool) {
	claimed := c.GetString(ctxTenant)
	if claimed == "" {
		// Authentication is off.
		return requested, requested != ""
	}
	if requested != "" && requested != claimed {
		return "", false
	}
	return claimed, true
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Status: "error", Code: code, Message: msg})
}
