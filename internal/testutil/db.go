package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/rsaviz/internal/db"
)

// SetupTestDB поднимает PostgreSQL testcontainer, применяет миграции журнала
// и возвращает подключённый *db.DB. Контейнер и пул закрываются через tb.Cleanup.
// Если задан DB_ADDR, контейнер не поднимается (для CI/CD).
func SetupTestDB(tb testing.TB) *db.DB {
	tb.Helper()
	ctx := context.Background()

	if dsn := os.Getenv("DB_ADDR"); dsn != "" {
		return connect(ctx, tb, dsn)
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rsaviz"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}

	return connect(ctx, tb, dsn)
}

func connect(ctx context.Context, tb testing.TB, dsn string) *db.DB {
	tb.Helper()

	if err := db.RunMigrations(ctx, dsn); err != nil {
		tb.Fatalf("running migrations: %v", err)
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to test db: %v", err)
	}
	tb.Cleanup(database.Close)

	return database
}
