package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cantine.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"recipes", "inventory_items", "weekly_plans", "execution_metrics", "shopping_lists"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	// Running migrations again is a no-op.
	if err := RunMigrations(dbPath); err != nil {
		t.Errorf("Expected second migration run to succeed, got %v", err)
	}
}

func TestConnectPostgres(t *testing.T) {
	t.Run("MissingDSN", func(t *testing.T) {
		_, err := ConnectPostgres(context.Background(), "")
		if err == nil || err.Error() != "DATABASE_URL environment variable not set" {
			t.Errorf("Expected missing DSN error, got %v", err)
		}
	})

	t.Run("Live", func(t *testing.T) {
		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			t.Skip("TEST_DATABASE_URL not set, skipping integration test")
		}
		pool, err := ConnectPostgres(context.Background(), dsn)
		if err != nil {
			t.Fatalf("ConnectPostgres failed: %v", err)
		}
		pool.Close()
	})
}
