//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"trustscore/internal/store/postgres"
	"trustscore/internal/store/storetest"
	"trustscore/pkg/testutil/containers"
)

func TestPostgresStoreConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, postgres.RunMigrations(context.Background(), pg.DB))

	s := postgres.New(pg.DB)
	storetest.Run(t, s, func(t *testing.T) {
		require.NoError(t, pg.TruncateTables(context.Background(), "records"))
	})
}
