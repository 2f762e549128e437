package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BatchExecution is one confirmed multi-send transaction. Amounts are stored as
// base-10 strings because they may exceed 64 bits.
type BatchExecution struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TxHash       string         `gorm:"column:tx_hash;not null;uniqueIndex"`
	Proxy        string         `gorm:"column:proxy;not null"`
	Sender       string         `gorm:"column:sender;not null"`
	TxCount      int            `gorm:"column:tx_count;not null"`
	Destinations pq.StringArray `gorm:"column:destinations;type:text[]"`
	TotalValue   string         `gorm:"column:total_value;not null"`

	// Gas settings the batch was submitted with
	GasLimit      uint64 `gorm:"column:gas_limit;not null"`
	GasPrice      string `gorm:"column:gas_price;not null"`
	Tier          string `gorm:"column:tier"`
	EstimatedCost string `gorm:"column:estimated_cost"`

	// Receipt
	GasUsed           uint64    `gorm:"column:gas_used;not null"`
	EffectiveGasPrice string    `gorm:"column:effective_gas_price;not null"`
	Status            string    `gorm:"column:status;not null"`
	ExecutedAt        time.Time `gorm:"column:executed_at;not null"`
}

// TableName specifies the table name for the BatchExecution model
func (BatchExecution) TableName() string {
	return "batch_executions"
}
