package repo

import (
	"testing"

	"satta-service/internal/config"
	"satta-service/internal/model"
)

func TestOpenSQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:repo_open?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !db.Migrator().HasTable(&model.GameRecord{}) || !db.Migrator().HasTable(&model.GameRecordPlayer{}) {
		t.Fatalf("record tables not migrated")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
