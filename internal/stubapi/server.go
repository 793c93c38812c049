// Package stubapi emulates the listing backend: JWT accounts, categories,
// schedules (properties) and saved schedules, all held in memory.
package stubapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"uyadmin.io/cli/internal/core/domain"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Config tunes the stub backend.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Clock replaces time.Now, letting tests expire tokens.
	Clock  func() time.Time
	Logger logrus.FieldLogger
}

type account struct {
	id           int
	username     string
	email        string
	passwordHash []byte
}

// Server is an in-memory backend.
type Server struct {
	echo   *echo.Echo
	cfg    Config
	logger logrus.FieldLogger

	mu         sync.RWMutex
	nextID     int
	accounts   map[string]*account
	categories []domain.Category
	properties []domain.Property
	saved      []savedRecord

	refreshCalls atomic.Int64
}

type savedRecord struct {
	id         int
	owner      int
	propertyID int
	savedAt    time.Time
}

// New builds a server with routes registered.
func New(cfg Config) *Server {
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte("stubapi-insecure-secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	s := &Server{
		echo:     echo.New(),
		cfg:      cfg,
		logger:   cfg.Logger,
		nextID:   1,
		accounts: make(map[string]*account),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	accounts := s.echo.Group("/accounts")
	accounts.POST("/register/", s.handleRegister)
	accounts.POST("/login/", s.handleLogin)
	accounts.POST("/token/refresh/", s.handleRefresh)

	uy := s.echo.Group("/uy", s.authenticate)
	uy.POST("/create_category/", s.handleCreateCategory)
	uy.GET("/get_all_category/", s.handleListCategories)
	uy.GET("/get_category_by_id/:id/", s.handleGetCategory)

	uy.POST("/create_schedule/", s.handleCreateProperty)
	uy.GET("/get_all_schedule/", s.handleListProperties)
	uy.GET("/get_schedule/:id/", s.handleGetProperty)
	uy.PATCH("/update_schedule/:id/", s.handleUpdateProperty)
	uy.DELETE("/delete_schedule/:id/", s.handleDeleteProperty)

	uy.POST("/create_saved_schedule/", s.handleCreateSaved)
	uy.GET("/get_saved_schedule/", s.handleListSaved)
	uy.DELETE("/delete_saved_schedule/:id/", s.handleDeleteSaved)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"request_id": c.Request().Header.Get("X-Request-ID"),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request error")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// RefreshCalls reports how many refresh requests were answered successfully.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

func (s *Server) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}
