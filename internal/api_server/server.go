package api_server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/blog-commerce-backend/internal/api_server/handler"
	"github.com/blog-commerce-backend/internal/api_server/middleware"
	"github.com/blog-commerce-backend/internal/api_server/service"
	"github.com/blog-commerce-backend/internal/config"
	"github.com/blog-commerce-backend/internal/platform/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// Services groups the business services exposed over HTTP
type Services struct {
	Comments service.CommentService
	Replies  service.ReplyLedger
	Payments service.PaymentService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services, sessions *session.Manager) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, routeHandlers{
		session: handler.NewSessionHandler(log, sessions, handler.CookieSettings{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.SecureCookie,
		}),
		comments: handler.NewCommentHandler(log, services.Comments),
		replies:  handler.NewReplyHandler(log, services.Replies),
		payments: handler.NewPaymentHandler(log, services.Payments, handler.PaymentPages{
			SuccessURL:      cfg.Gateway.SuccessPageURL,
			FailureURL:      cfg.Gateway.FailurePageURL,
			DefaultCurrency: cfg.Gateway.DefaultCurrency,
		}),
		requireSession:    middleware.SessionGuard(log, sessions, cfg.Session.CookieName),
		requireSignedCall: func(outcome string) gin.HandlerFunc {
			return middleware.CallbackSignature(log, cfg.Gateway.CallbackSecret, outcome, "id")
		},
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      withCORS(cfg.CORS, httpRouter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// withCORS lets the storefront call the API with its session cookie
func withCORS(cfg config.CORSConfig, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.CorrelationIDHeader, handler.IdempotencyKeyHeader},
		ExposedHeaders:   []string{middleware.CorrelationIDHeader},
		AllowCredentials: true,
	}).Handler(next)
}

// Handler exposes the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting at most the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
