// Package integration runs the repositories and the HTTP API against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/invsync/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// syncTables are emptied between tests sharing the container
var syncTables = []string{"items", "combos"}

var shared struct {
	mu        sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is a migrated database connection owned by one test
type TestDB struct {
	DB  *gorm.DB
	DSN string
	t   *testing.T
}

// NewTestDB starts a dedicated container; use it when a test needs a pristine schema
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, dsn := startPostgres(t, "invsync_test")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	tdb := open(t, dsn)
	migrateSchema(t, tdb.DB)
	return tdb
}

// NewSharedTestDB connects to the package-wide container, starting and
// migrating it on first use. Callers clean up with CleanTables.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.container == nil {
		container, dsn := startPostgres(t, "invsync_shared_test")
		shared.container, shared.dsn = container, dsn

		tdb := open(t, dsn)
		migrateSchema(t, tdb.DB)
	}
	return open(t, shared.dsn)
}

// CleanTables empties the sync tables, leaving the schema in place
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	for _, table := range syncTables {
		require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+table).Error, "Failed to truncate %s", table)
	}
}

// CleanupSharedContainer terminates the package-wide container; call it from TestMain
func CleanupSharedContainer() {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shared.container.Terminate(ctx)
	shared.container, shared.dsn = nil, ""
}

func startPostgres(t *testing.T, database string) (*tcpostgres.PostgresContainer, string) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	return container, dsn
}

// open connects with GORM and closes the pool when the test ends.
// TEST_DB_DEBUG=1 logs every statement.
func open(t *testing.T, dsn string) *TestDB {
	t.Helper()

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: db, DSN: dsn, t: t}
}

// migrateSchema applies migrations/ with the same migrator the server uses
func migrateSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	path := migrationsDir()
	require.NotEmpty(t, path, "Could not find migrations directory")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, path, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// migrationsDir walks up from this file to the repository's migrations/
func migrationsDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	for dir := filepath.Dir(filename); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}
