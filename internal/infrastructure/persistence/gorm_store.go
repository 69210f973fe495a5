package persistence

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/colmeia/hive/internal/infrastructure/config"
)

// snapshotKey is the single row the console state lives under,
// mirroring the browser version's single local-storage key.
const snapshotKey = "colmeia-deepseek-state"

// SnapshotModel is the kv_blobs table row.
type SnapshotModel struct {
	Key       string `gorm:"primaryKey;size:128"`
	Data      []byte
	UpdatedAt time.Time
}

// TableName overrides the gorm default.
func (SnapshotModel) TableName() string {
	return "kv_blobs"
}

// NewDBConnection opens the snapshot database.
func NewDBConnection(cfg config.StorageConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&SnapshotModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// GormStore keeps the snapshot blob in a single database row.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed snapshot store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Compile-time interface check
var _ SnapshotStore = (*GormStore)(nil)

func (s *GormStore) Load() ([]byte, error) {
	var row SnapshotModel
	err := s.db.First(&row, "key = ?", snapshotKey).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot row: %w", err)
	}
	return row.Data, nil
}

func (s *GormStore) Save(data []byte) error {
	row := SnapshotModel{Key: snapshotKey, Data: data}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save snapshot row: %w", err)
	}
	return nil
}
