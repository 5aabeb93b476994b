package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

const latestMigration = 3

func TestMigrationManager_Up(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	// Running again is a no-op.
	if err := mgr.Up(); err != nil {
		t.Fatalf("Second Up() should succeed: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Database is in dirty state after migrations")
	}
	if version != latestMigration {
		t.Errorf("Expected migration version %d, got %d", latestMigration, version)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Failed to close migration manager: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"cards", "drafts", "pick_grades"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}

func TestMigrationManager_DownAndSteps(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "steps-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	version, _, err := mgr.Version()
	if err != nil {
		t.Fatalf("Version() on empty database: %v", err)
	}
	if version != 0 {
		t.Errorf("Expected version 0 before migrating, got %d", version)
	}

	if err := mgr.Steps(2); err != nil {
		t.Fatalf("Steps(2) failed: %v", err)
	}
	if version, _, _ = mgr.Version(); version != 2 {
		t.Errorf("Expected version 2 after two steps, got %d", version)
	}

	if err := mgr.Steps(-1); err != nil {
		t.Fatalf("Steps(-1) failed: %v", err)
	}
	if version, _, _ = mgr.Version(); version != 1 {
		t.Errorf("Expected version 1 after stepping down, got %d", version)
	}

	if err := mgr.Down(); err != nil {
		t.Fatalf("Down() failed: %v", err)
	}
	if version, _, _ = mgr.Version(); version != 0 {
		t.Errorf("Expected version 0 after Down(), got %d", version)
	}
}
