package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestAutoMigrateAllOnSQLite(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"course", "module", "course_module", "lesson", "module_lesson", "import_log"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("missing table %q", table)
		}
	}
	if err := EnsureImportIndexes(gdb); err != nil {
		t.Fatalf("EnsureImportIndexes on sqlite should be a no-op: %v", err)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "app", Password: "pw", Name: "academy"}
	if got, want := cfg.DSN(), "postgres://app:pw@db:5432/academy?sslmode=disable"; got != want {
		t.Fatalf("DSN: want=%q got=%q", want, got)
	}
}
