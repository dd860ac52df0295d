package helpers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	User         = "postgres"
	Password     = "postgres"
	MasterDBName = "SMARTMEDIA_DB"
)

var (
	ctx = context.Background()

	manager = newDatabaseManager(MasterDBName)
)

// databaseManager is a test helper which facilitates the templating
// of a single 'master' database in a shared postgres container. This
// allows tests to use individual databases without needing to spawn
// multiple containers. The manager will:
//   - spawn the container on first use,
//   - migrate the master database (using the real database manager),
//   - mark the master database as a template, and,
//   - provision new databases based off that master database.
type databaseManager struct {
	*sync.Mutex
	masterDatabaseName string
	pgContainer        *postgres.PostgresContainer
	host               string
	port               string
	connection         *sql.DB
}

func newDatabaseManager(databaseName string) *databaseManager {
	return &databaseManager{
		Mutex:              &sync.Mutex{},
		masterDatabaseName: databaseName,
	}
}

// RequireDatabase provisions a fresh, fully migrated database for the
// calling test, returning a connected database.Manager for it. The
// test is skipped when running with '-short'.
func RequireDatabase(t *testing.T) database.Manager {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	name := strings.ToLower(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	config := manager.provisionDB(t, name)

	db := database.New()
	if err := db.Connect(config); err != nil {
		t.Fatalf("failed to connect to provisioned database '%s': %s", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func (manager *databaseManager) config(databaseName string) database.DatabaseConfig {
	return database.DatabaseConfig{
		User:            User,
		Password:        Password,
		Name:            databaseName,
		Host:            manager.host,
		Port:            manager.port,
		SslMode:         "disable",
		ConnectAttempts: 3,
	}
}

func (manager *databaseManager) provisionDB(t *testing.T, databaseName string) database.DatabaseConfig {
	manager.Lock()
	defer manager.Unlock()

	if manager.connection == nil {
		t.Log("Database provisioning request received but manager not started yet. Initializing database management...")
		manager.connect(t)
		manager.markMasterDB(t)
		t.Log("Database management initialised!")
	}

	_, err := manager.connection.Exec(fmt.Sprintf(`CREATE DATABASE "%s" TEMPLATE "%s"`, databaseName, manager.masterDatabaseName))
	if err != nil {
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != "42P04" {
			t.Fatalf("failed to provision database '%s' from template '%s': (%T) %s", databaseName, manager.masterDatabaseName, err, err)
		}

		// Left over from a previous run of the same test, start from a clean slate.
		t.Logf("Database '%s' already provisioned. Truncating tables", databaseName)
		db := database.New()
		if err := db.Connect(manager.config(databaseName)); err != nil {
			t.Fatalf("failed to connect to existing database '%s': %s", databaseName, err)
		}
		defer db.Close()

		if _, err := db.GetSqlxDb().Exec(`TRUNCATE files, media_metadata, conversions`); err != nil {
			t.Fatalf("failed to truncate existing database '%s': %s", databaseName, err)
		}
	}

	return manager.config(databaseName)
}

func (manager *databaseManager) connect(t *testing.T) {
	if manager.pgContainer == nil {
		manager.spawnPostgres(t)
	}

	db, err := sql.Open("postgres", manager.config(manager.masterDatabaseName).DSN())
	if err != nil {
		t.Fatalf("failed to open postgres connection: %s", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping postgres: %s", err)
	}

	t.Log("Database connection established!")
	manager.connection = db
}

// markMasterDB migrates the master database and then marks it as a template. Once
// marked, the database manager connection is closed as postgres refuses to
// copy a template database which has open connections.
func (manager *databaseManager) markMasterDB(t *testing.T) {
	t.Log("Migrating master database...")
	master := database.New()
	if err := master.Connect(manager.config(manager.masterDatabaseName)); err != nil {
		t.Fatalf("failed to migrate master database: %s", err)
	}
	_ = master.Close()

	if _, err := manager.connection.Exec(fmt.Sprintf(`ALTER DATABASE "%s" WITH is_template TRUE`, manager.masterDatabaseName)); err != nil {
		t.Fatalf("failed to mark master database (%s) as template: %s", manager.masterDatabaseName, err)
	}

	// Further statements are issued from the 'postgres' maintenance database.
	_ = manager.connection.Close()
	db, err := sql.Open("postgres", manager.config("postgres").DSN())
	if err != nil {
		t.Fatalf("failed to open maintenance connection: %s", err)
	}
	manager.connection = db
}

func (manager *databaseManager) spawnPostgres(t *testing.T) {
	postgresC, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:14.1-alpine"),
		postgres.WithDatabase(MasterDBName),
		postgres.WithUsername(User),
		postgres.WithPassword(Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	host, err := postgresC.Host(ctx)
	if err != nil {
		t.Fatalf("failed to resolve container host: %s", err)
	}

	port, err := postgresC.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to resolve container port: %s", err)
	}

	manager.pgContainer = postgresC
	manager.host = host
	manager.port = port.Port()
}
