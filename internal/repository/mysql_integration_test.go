//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/iliyamo/fridge-share/internal/app"
	"github.com/iliyamo/fridge-share/internal/database"
	"github.com/iliyamo/fridge-share/internal/repository/storetest"
	"github.com/iliyamo/fridge-share/internal/service"
)

// Child tables first; fridge_members references fridges.
var tables = []string{
	"fridge_members", "fridges", "fridge_items", "categories", "invites",
	"notifications", "refresh_tokens", "profiles", "accounts",
}

func TestMySQLStores(t *testing.T) {
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("fridge_share"),
		tcmysql.WithUsername("fridge"),
		tcmysql.WithPassword("fridge"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "loc=UTC", "clientFoundRows=true")
	require.NoError(t, err)

	db, err := database.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	suite.Run(t, &storetest.Suite{NewStores: func() service.Stores {
		for _, tbl := range tables {
			_, err := db.ExecContext(ctx, "DELETE FROM "+tbl)
			require.NoError(t, err)
		}
		return app.MySQLStores(db)
	}})
}
