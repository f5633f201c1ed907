// Package history persists reconciled price snapshots. The reconciler
// has no knowledge of this store; the watcher appends after each pass.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// Snapshot is one persisted reconciliation result. Prices are stored as
// strings to avoid float rounding.
type Snapshot struct {
	ID           uint      `gorm:"primaryKey"`
	PassTime     time.Time `gorm:"index"`
	ChosenValue  string
	ChosenSource string
	SpreadPct    string
	Mismatch     bool
	Candidates   int
}

// Store is a sqlite-backed snapshot log.
type Store struct {
	db     *gorm.DB
	logger *logging.Logger
}

// Open opens (or creates) the snapshot database at path.
// Use ":memory:" for an in-memory store.
func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history store: %w", err)
	}

	logger.Info("History store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Append stores one reconciliation result.
func (s *Store) Append(result reconcile.Result) error {
	snapshot := Snapshot{
		PassTime:     result.PassTime,
		ChosenValue:  result.ChosenValue.String(),
		ChosenSource: result.ChosenSource,
		SpreadPct:    result.SpreadPct.String(),
		Mismatch:     result.Mismatch,
		Candidates:   len(result.Candidates),
	}
	if err := s.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// Recent returns up to n most recent chosen values, ordered oldest to
// newest for indicator computation.
func (s *Store) Recent(n int) ([]decimal.Decimal, error) {
	var snapshots []Snapshot
	if err := s.db.Order("pass_time DESC").Limit(n).Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent snapshots: %w", err)
	}

	values := make([]decimal.Decimal, 0, len(snapshots))
	for i := len(snapshots) - 1; i >= 0; i-- {
		v, err := decimal.NewFromString(snapshots[i].ChosenValue)
		if err != nil {
			s.logger.Warn("Skipping malformed snapshot value",
				"id", snapshots[i].ID, "value", snapshots[i].ChosenValue)
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// Latest returns the most recent snapshot, or nil when the store is empty.
func (s *Store) Latest() (*Snapshot, error) {
	var snapshot Snapshot
	err := s.db.Order("pass_time DESC").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&Snapshot{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
