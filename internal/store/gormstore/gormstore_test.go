package gormstore

import (
	"os"
	"testing"

	"yatube/internal/db"
	"yatube/internal/store"
	"yatube/internal/store/storetest"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The suite needs a disposable database: every subtest truncates the tables.
//
//	TEST_DATABASE_URL="host=localhost user=postgres password=postgres dbname=yatube_test sslmode=disable" go test ./...
func TestStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	conn, err := db.Open(driver, dsn, false)
	require.NoError(t, err)

	storetest.Run(t, func(t *testing.T) store.Store {
		truncate(t, conn)
		return New(conn)
	})
}

func truncate(t *testing.T, conn *gorm.DB) {
	t.Helper()
	// Children first so the foreign keys never block a delete.
	for _, table := range []string{"follows", "comments", "posts", "groups", "users"} {
		require.NoError(t, conn.Exec("DELETE FROM "+conn.Statement.Quote(table)).Error)
	}
}
