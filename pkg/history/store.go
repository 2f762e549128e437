// Package history persists confirmed batches so they can be listed and looked
// up by transaction hash after the fact.
package history

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shivamsri07/mutisend-sdk/pkg/batch"
	"github.com/shivamsri07/mutisend-sdk/pkg/db/models"
)

// ErrNotFound is returned by FindByHash when no execution is stored for a hash.
var ErrNotFound = errors.New("batch execution not found")

var _ batch.Recorder = (*Store)(nil)

// Store records executed batches in Postgres. It implements batch.Recorder.
type Store struct {
	logger *logrus.Logger
	db     *gorm.DB
	now    func() time.Time
}

// NewStore returns a store on an already migrated database (see db.SetupDatabase).
func NewStore(logger *logrus.Logger, db *gorm.DB) *Store {
	return &Store{
		logger: logger,
		db:     db,
		now:    time.Now,
	}
}

// RecordExecution stores a confirmed batch. Recording the same transaction hash
// twice keeps the first row.
func (s *Store) RecordExecution(ctx context.Context, rec batch.ExecutionRecord) error {
	row := newExecutionRow(rec, s.now())

	s.logger.WithFields(logrus.Fields{
		"batch_id": row.ID.String(),
		"tx_hash":  row.TxHash,
		"tx_count": row.TxCount,
	}).Debug("Recording batch execution")

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to record batch execution: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		s.logger.WithField("tx_hash", row.TxHash).Debug("Batch execution already recorded")
	}
	return nil
}

// Recent returns up to limit executions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.BatchExecution, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.BatchExecution
	err := s.db.WithContext(ctx).
		Order("executed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batch executions: %w", err)
	}
	return rows, nil
}

// FindByHash returns the execution stored for a transaction hash.
func (s *Store) FindByHash(ctx context.Context, txHash string) (*models.BatchExecution, error) {
	var row models.BatchExecution
	err := s.db.WithContext(ctx).
		Where("tx_hash = ?", strings.ToLower(txHash)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find batch execution: %w", err)
	}
	return &row, nil
}

func newExecutionRow(rec batch.ExecutionRecord, executedAt time.Time) models.BatchExecution {
	destinations := make(pq.StringArray, len(rec.Transactions))
	for i, tx := range rec.Transactions {
		destinations[i] = tx.To.Hex()
	}

	return models.BatchExecution{
		ID:           uuid.New(),
		TxHash:       strings.ToLower(rec.Result.TransactionHash.Hex()),
		Proxy:        rec.Proxy.Hex(),
		Sender:       rec.From.Hex(),
		TxCount:      len(rec.Transactions),
		Destinations: destinations,
		TotalValue:   decimalString(rec.TotalValue),

		GasLimit:      rec.Settings.GasLimit,
		GasPrice:      decimalString(rec.Settings.GasPrice),
		Tier:          string(rec.Settings.Tier),
		EstimatedCost: rec.Settings.EstimatedCost,

		GasUsed:           rec.Result.GasUsed,
		EffectiveGasPrice: decimalString(rec.Result.EffectiveGasPrice),
		Status:            string(rec.Result.Status),
		ExecutedAt:        executedAt.UTC(),
	}
}

func decimalString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
