// Package server serves the MindVault web page and its JSON API.
package server

import (
	"context"
	"embed"
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rcliao/mindvault/internal/chat"
	"github.com/rcliao/mindvault/internal/metrics"
	"github.com/rcliao/mindvault/internal/persona"
	"github.com/rcliao/mindvault/internal/store"
)

// SessionCookie names the cookie that identifies a browser's chat session.
const SessionCookie = "mindvault_session"

//go:embed templates/*.html
var templateFS embed.FS

// Responder produces chat replies.
type Responder interface {
	Respond(ctx context.Context, sessionID, input, mode string) (*chat.Reply, error)
}

// JournalReader returns the journal's lines.
type JournalReader interface {
	Lines() ([]string, error)
}

type Config struct {
	Chat     Responder
	Store    store.Store
	Journal  JournalReader
	Sessions persona.SessionStore
	Metrics  *metrics.Metrics
	Log      zerolog.Logger

	// RateLimit is chat requests per second per client IP; 0 disables it.
	RateLimit float64
}

type Server struct {
	echo *echo.Echo
	page *template.Template
	cfg  Config
}

func New(cfg Config) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover(), requestLogger(cfg.Log))

	s := &Server{echo: e, page: page, cfg: cfg}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/healthz", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(s.cfg.Metrics.Handler()))

	api := s.echo.Group("/api")
	var chatMiddleware []echo.MiddlewareFunc
	if s.cfg.RateLimit > 0 {
		chatMiddleware = append(chatMiddleware, rateLimiter(s.cfg.RateLimit))
	}
	api.POST("/chat", s.sendMessage, chatMiddleware...)
	api.GET("/trends", s.trends)
	api.GET("/trends.png", s.trendsChart)
	api.GET("/wordcloud", s.wordCloud)
	api.GET("/search", s.search)
	api.GET("/entries", s.entries)
}

// ServeHTTP lets the server be used as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	s.cfg.Log.Info().Str("addr", addr).Msg("listening")
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func rateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(math.Max(1, math.Ceil(perSecond*2)))
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 10 * time.Minute,
		},
	))
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// sessionID returns the caller's session, issuing a new cookie if needed.
func sessionID(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		if _, err := uuid.Parse(ck.Value); err == nil {
			return ck.Value
		}
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	})
	return id
}
