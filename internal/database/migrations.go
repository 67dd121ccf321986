package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/folio-journal/backend/internal/content"
	"github.com/folio-journal/backend/internal/entries"
)

const migrationBackfillEntryTextFormat = "2026-08-12_backfill_entry_text_format"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillEntryTextFormat, apply: backfillEntryTextFormat},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillEntryTextFormat tags legacy rows persisted before the format tag
// existed. The encoding is sniffed from the stored text; rows without text
// stay untagged.
func backfillEntryTextFormat(db *gorm.DB) error {
	var legacy []entries.Entry
	if err := db.Where("text_format = '' AND text IS NOT NULL").Find(&legacy).Error; err != nil {
		return err
	}
	for _, entry := range legacy {
		format := content.DetectFormat(*entry.Text)
		if err := db.Model(&entries.Entry{}).
			Where("id = ?", entry.ID).
			Update("text_format", string(format)).Error; err != nil {
			return err
		}
	}
	return nil
}
