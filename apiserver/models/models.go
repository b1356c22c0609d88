package models

import (
	"time"
)

// Rollup is the API server's mirror of a published rollup.
type Rollup struct {
	ID             uint64 `gorm:"primary_key"`
	RollupID       uint64 `gorm:"unique_index"`
	Created        time.Time
	Settled        *time.Time
	NumTxs         int
	AssetIDs       string // comma-separated decimal asset ids
	BridgeCallData string // comma-separated hex bridge calls, padding omitted
}

// Transaction is the API server's mirror of a transaction carried by a
// published rollup.
type Transaction struct {
	ID            uint64 `gorm:"primary_key"`
	TransactionID string `gorm:"unique_index"`
	RollupID      uint64 `gorm:"index"`
	Position      int
}

// SyncState is a single-row table carrying the mirror's progress and the
// coordinator-side pending pool gauge.
type SyncState struct {
	ID             uint64 `gorm:"primary_key"`
	NextRollupID   uint64
	PendingTxCount int
	UpdatedAt      time.Time
}
