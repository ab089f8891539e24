package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type descriptionRow struct {
	JobID              string `gorm:"primaryKey;size:128"`
	Document           []byte `gorm:"not null"`
	CompanyDescription string
	ContentHash        string `gorm:"size:64;index"`
	UpdatedAt          time.Time
}

func (descriptionRow) TableName() string { return "job_descriptions" }

// SQL stores descriptions through gorm in Postgres or SQLite.
type SQL struct {
	db  *gorm.DB
	log *slog.Logger
}

// OpenSQL connects with driver "postgres" or "sqlite" and migrates the schema.
func OpenSQL(driver, dsn string, log *slog.Logger) (*SQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&descriptionRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("description store ready", "driver", driver)
	return &SQL{db: db, log: log}, nil
}

func (s *SQL) Save(ctx context.Context, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	row := descriptionRow(rec)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save description %s: %w", rec.JobID, err)
	}
	return nil
}

func (s *SQL) Load(ctx context.Context, jobID string) (Record, error) {
	var row descriptionRow
	err := s.db.WithContext(ctx).First(&row, "job_id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load description %s: %w", jobID, err)
	}
	return Record(row), nil
}

func (s *SQL) Delete(ctx context.Context, jobID string) error {
	res := s.db.WithContext(ctx).Delete(&descriptionRow{}, "job_id = ?", jobID)
	if res.Error != nil {
		return fmt.Errorf("delete description %s: %w", jobID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
