//go:build integration

package testutil

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/statshub/internal/repo/postgres"
)

// ApplyMigrationsGoose — накатывает встроенные миграции (те же, что при старте сервиса).
func ApplyMigrationsGoose(dsn string) error {
	if err := postgres.Migrate(context.Background(), dsn); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
