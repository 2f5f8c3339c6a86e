package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"promptcrawler/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseLogger routes goose output through the component logger.
type gooseLogger struct{ log *logger.Logger }

func (g gooseLogger) Printf(format string, v ...interface{}) { g.log.LogInfof(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...interface{}) { g.log.LogFatalf(format, v...) }

// Migrate applies the embedded schema migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed before migrations: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: logger.New("Migrations")})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
