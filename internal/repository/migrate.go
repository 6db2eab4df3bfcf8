package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver for goose
	"github.com/pressly/goose/v3"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository/migrations"
)

// Migrate applies all pending schema migrations.
func Migrate(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
