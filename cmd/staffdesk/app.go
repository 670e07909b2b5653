package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ndanilov/staffdesk/internal/db"
	"github.com/ndanilov/staffdesk/internal/handlers"
	"github.com/ndanilov/staffdesk/internal/handlers/middleware"
	"github.com/ndanilov/staffdesk/internal/logger"
	"github.com/ndanilov/staffdesk/internal/repository/postgres"
	"github.com/ndanilov/staffdesk/internal/service/auth"
	"github.com/ndanilov/staffdesk/internal/service/auth/tokenmanager"
	"github.com/ndanilov/staffdesk/internal/service/cleaner"
	"github.com/ndanilov/staffdesk/internal/service/staff"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	cleaner *cleaner.Cleaner
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		Alg:        c.SigningAlg,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	staffService := staff.NewService(storage.Staff())
	tokenCleaner := cleaner.New(c.CleanupInterval, storage.Refresh(), storage.Blacklist(), log)

	// Initialize handlers and complete them as router
	mux := handlers.NewRouter(
		handlers.NewAuth(authService),
		handlers.NewStaff(staffService),
		middleware.NewAuth(authService),
		middleware.LoggerMiddleware(log),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     log,
		cleaner:    tokenCleaner,
	}, nil
}

// Run starts the token cleanup sweep and the http server
// Closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go s.cleaner.Run(srvCtx)

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close connections gracefully
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
