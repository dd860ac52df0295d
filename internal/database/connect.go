package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	sqldblogger "github.com/simukti/sqldb-logger"
)

const (
	SqlDialect          = "postgres"
	SqlConnectionString = "host=%s user=%s password=%s dbname=%s port=%s sslmode=%s"
)

var (
	//go:embed migrations/*.sql
	migrations embed.FS

	dbLogger = logger.Get("DB")

	ErrNotConnected = errors.New("DB manager has not yet connected")
	ErrLockHeld     = errors.New("advisory lock is held by another session")
)

type (
	// DatabaseConfig is a subset of the configuration focusing solely
	// on database connection items
	DatabaseConfig struct {
		User     string `yaml:"username" env:"DB_USERNAME" env-required:"true" validate:"required"`
		Password string `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
		Name     string `yaml:"name" env:"DB_NAME" env-default:"smartmedia"`
		Host     string `yaml:"host" env:"DB_HOST" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
		SslMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable" validate:"oneof=disable require verify-ca verify-full"`

		// ConnectAttempts controls how many times a failed ping is retried before
		// Connect gives up.
		ConnectAttempts int `yaml:"connect_attempts" env:"DB_CONNECT_ATTEMPTS" env-default:"5" validate:"min=1"`
		LogQueries      bool `yaml:"log_queries" env:"DB_LOG_QUERIES" env-default:"false"`
	}

	SqlLogger struct {
		logger logger.Logger
	}

	gooseLogger struct {
		logger logger.Logger
	}

	Manager interface {
		Connect(DatabaseConfig) error
		GetSqlxDb() *sqlx.DB
		WrapTx(func(*sqlx.Tx) error) error
		WithAdvisoryLock(context.Context, int64, func() error) error
		Close() error
	}

	manager struct {
		rawDb *sql.DB
		db    *sqlx.DB
	}
)

func (config DatabaseConfig) DSN() string {
	sslMode := config.SslMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(SqlConnectionString, config.Host, config.User, config.Password, config.Name, config.Port, sslMode)
}

func New() *manager {
	return &manager{}
}

func (db *manager) Connect(config DatabaseConfig) error {
	dsn := config.DSN()
	sql, err := sql.Open(SqlDialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if config.LogQueries {
		sql = sqldblogger.OpenDriver(dsn, sql.Driver(), &SqlLogger{dbLogger})
	}

	maxAttempts := config.ConnectAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := sql.Ping()
		if err == nil {
			break
		}

		if attempt >= maxAttempts {
			dbLogger.Emit(logger.ERROR, "All attempts FAILED!\n")
			return fmt.Errorf("failed to connect to postgres after %d attempts: %w", attempt, err)
		}

		dbLogger.Emit(logger.WARNING, "Attempt (%v/%v) failed... Retrying in 3s\n", attempt, maxAttempts)
		time.Sleep(time.Second * 3)
	}

	db.rawDb = sql
	db.db = sqlx.NewDb(sql, SqlDialect)

	if err := db.ExecuteMigrations(); err != nil {
		return err
	}

	dbLogger.Emit(logger.SUCCESS, "Database connection complete!\n")
	return nil
}

// ExecuteMigrations uses the comp-time embedded SQL migrations (found in the 'migrations'
// dir in this package) and runs them against the current DB instance.
//
// Note that this method must only be called following a successful DB connection.
func (db *manager) ExecuteMigrations() error {
	rawDb := db.rawDb
	if rawDb == nil {
		return fmt.Errorf("cannot execute migrations when DB manager has not yet connected")
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{dbLogger})
	if err := goose.SetDialect(SqlDialect); err != nil {
		return fmt.Errorf("failed to set dialect for DB migration: %w", err)
	}

	dbLogger.Emit(logger.INFO, "Checking for pending DB migrations...\n")
	if err := goose.Up(rawDb, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}

	dbLogger.Emit(logger.SUCCESS, "DB Goose migration complete!\n")
	return nil
}

// GetSqlxDb returns the sqlx database connection if
// one has been opened using 'Connect'. Otherwise, nil is returned
func (db *manager) GetSqlxDb() *sqlx.DB {
	return db.db
}

// WrapTx is a convinience method around the top-level WrapTx, which simply
// uses the managers DB instance as the first argument.
func (db *manager) WrapTx(f func(tx *sqlx.Tx) error) error {
	if db.db == nil {
		return ErrNotConnected
	}

	return WrapTx(db.db, f)
}

// WithAdvisoryLock attempts to take the session-level postgres advisory lock
// identified by the key provided, and calls 'f' while holding it. The lock is
// never waited on: if another session holds it then ErrLockHeld is returned
// and 'f' is not called.
func (db *manager) WithAdvisoryLock(ctx context.Context, key int64, f func() error) error {
	if db.db == nil {
		return ErrNotConnected
	}

	// Advisory locks belong to a session, so we must pin a single
	// connection from the pool for both the lock and unlock.
	conn, err := db.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for advisory lock: %w", err)
	}
	defer conn.Close()

	var acquired bool
	if err := conn.GetContext(ctx, &acquired, `SELECT pg_try_advisory_lock($1)`, key); err != nil {
		return fmt.Errorf("failed to take advisory lock %d: %w", key, err)
	}
	if !acquired {
		return ErrLockHeld
	}

	defer func() {
		if _, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, key); err != nil {
			dbLogger.Errorf("Failed to release advisory lock %d: %s\n", key, err)
		}
	}()

	return f()
}

func (db *manager) Close() error {
	if db.db == nil {
		return nil
	}

	return db.db.Close()
}

func (l *SqlLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]any) {
	template := "%s - %v\n"
	switch level {
	case sqldblogger.LevelTrace:
		l.logger.Verbosef(template, msg, data)
	case sqldblogger.LevelDebug, sqldblogger.LevelInfo:
		duration := data["duration"]
		query, ok := data["query"]
		if ok {
			l.logger.Debugf("%s [%.2fms] -- %s\n", msg, duration, query)
		} else {
			l.logger.Debugf("%s [%.2fms]\n", msg, duration)
		}
	case sqldblogger.LevelError:
		l.logger.Errorf(template, msg, data)
	}
}

func (l *gooseLogger) Fatal(v ...interface{}) { l.logger.Emit(logger.FATAL, "%s", fmt.Sprint(v...)) }
func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Emit(logger.FATAL, format, v...)
}
func (l *gooseLogger) Print(v ...interface{})   { l.logger.Infof("%s", fmt.Sprint(v...)) }
func (l *gooseLogger) Println(v ...interface{}) { l.logger.Infof("%s", fmt.Sprintln(v...)) }
func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

// WrapTx starts a transaction against the provided DB, and then calls the user
// provided function. If this function errors, the transaction is rolled back - otherwise
// the transaction is committed.
func WrapTx(db *sqlx.DB, f func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		dbLogger.Errorf("Transaction failed... rolling back. Error: %s\n", err.Error())
		return err
	}

	return tx.Commit()
}
