package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/ndanilov/staffdesk/internal/handlers"
	"github.com/ndanilov/staffdesk/internal/handlers/middleware"
	"github.com/ndanilov/staffdesk/internal/repository/postgres"
	"github.com/ndanilov/staffdesk/internal/service/auth"
	"github.com/ndanilov/staffdesk/internal/service/auth/tokenmanager"
	"github.com/ndanilov/staffdesk/internal/service/staff"
	"github.com/ndanilov/staffdesk/internal/testutil"
)

type Services struct {
	AuthService  *auth.AuthService
	StaffService *staff.StaffService
}

// Token lifetimes used by RunTx servers
const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 24 * time.Hour
)

// Create db transaction and run server with that connection (one connection cause one transaction)
// The transaction rolls back when the test stops, so the database stays clean
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		storage := postgres.NewStorage(tx)

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			SecretKey:  "test-secret",
			AccessTTL:  AccessTTL,
			RefreshTTL: RefreshTTL,
		})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, storage)
		require.NoError(t, err, "auth service starting error", err)

		ss := staff.NewService(storage.Staff())

		// Complete all together as router
		router := handlers.NewRouter(
			handlers.NewAuth(as),
			handlers.NewStaff(ss),
			middleware.NewAuth(as),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService:  as,
			StaffService: ss,
		})
	})
}
