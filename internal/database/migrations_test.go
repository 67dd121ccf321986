package database

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/folio-journal/backend/internal/content"
	"github.com/folio-journal/backend/internal/entries"
)

func openMigrationTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&entries.Entry{}, &migrationRecord{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func stringPtr(value string) *string {
	return &value
}

func TestBackfillTagsLegacyRowsBySniffing(t *testing.T) {
	db := openMigrationTestDatabase(t)

	seeded := []entries.Entry{
		{Text: stringPtr("plain ![Image](http://i) words"), Date: time.Now().UTC()},
		{Text: stringPtr("<b>rich</b>"), Date: time.Now().UTC()},
		{Date: time.Now().UTC()},
		{Text: stringPtr("already tagged"), TextFormat: string(content.FormatRichText), Date: time.Now().UTC()},
	}
	for i := range seeded {
		if err := db.Create(&seeded[i]).Error; err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
	}

	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	expected := []string{
		string(content.FormatMarkdown),
		string(content.FormatRichText),
		"",
		string(content.FormatRichText),
	}
	for i, seed := range seeded {
		var row entries.Entry
		if err := db.Where("id = ?", seed.ID).Take(&row).Error; err != nil {
			t.Fatalf("load row %d: %v", i, err)
		}
		if row.TextFormat != expected[i] {
			t.Fatalf("row %d: expected tag %q, got %q", i, expected[i], row.TextFormat)
		}
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	db := openMigrationTestDatabase(t)

	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	var first migrationRecord
	if err := db.Where("name = ?", migrationBackfillEntryTextFormat).Take(&first).Error; err != nil {
		t.Fatalf("expected migration record: %v", err)
	}

	legacy := entries.Entry{Text: stringPtr("<b>late arrival</b>"), Date: time.Now().UTC()}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("seed late row: %v", err)
	}
	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var row entries.Entry
	if err := db.Where("id = ?", legacy.ID).Take(&row).Error; err != nil {
		t.Fatalf("load late row: %v", err)
	}
	if row.TextFormat != "" {
		t.Fatalf("recorded migration must not run again, got tag %q", row.TextFormat)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("", nil); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}
