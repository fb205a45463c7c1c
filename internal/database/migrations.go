package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationNullifyBlankContentFields = "2026-08-20_nullify_blank_content_fields"

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
		{name: migrationNullifyBlankContentFields, apply: nullifyBlankContentFields},
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

// nullifyBlankContentFields repairs rows written before blank text and image
// columns were normalized to NULL at the service boundary. A cleared image
// also drops its MIME type so content_type stays paired with image_data.
func nullifyBlankContentFields(db *gorm.DB) error {
	statements := []string{
		"UPDATE gospel_entries SET text = NULL WHERE text = '';",
		"UPDATE gospel_entries SET image_data = NULL WHERE image_data = '';",
		"UPDATE gospel_entries SET content_type = NULL WHERE image_data IS NULL;",
	}
	for _, statement := range statements {
		if err := db.Exec(statement).Error; err != nil {
			return err
		}
	}
	return nil
}
