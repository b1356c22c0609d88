package apiserver

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	apidatabase "github.com/rollupnet/rollupd/apiserver/database"
	"github.com/rollupnet/rollupd/apiserver/models"
	"github.com/rollupnet/rollupd/database"
	"github.com/rollupnet/rollupd/dbaccess"
	"github.com/rollupnet/rollupd/rolluptx"
)

const syncInterval = 10 * time.Second

// Sync mirrors the coordinator's store into the API server database so the
// HTTP surface never reads the coordinator's own files.
type Sync struct {
	kvdb database.Database
}

// NewSync returns a mirror reading from the given coordinator store.
func NewSync(kvdb database.Database) *Sync {
	return &Sync{kvdb: kvdb}
}

// Start mirrors in a loop until doneChan delivers.
func (s *Sync) Start(doneChan chan struct{}) error {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()
	for {
		if err := s.syncOnce(); err != nil {
			return err
		}
		select {
		case <-doneChan:
			log.Infof("syncOnce stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// syncOnce copies rollups the mirror has not seen yet and refreshes the sync
// state row.
func (s *Sync) syncOnce() error {
	db, err := apidatabase.DB()
	if err != nil {
		return err
	}

	context := dbaccess.NoTx(s.kvdb)
	syncState := &models.SyncState{}
	db.First(&syncState)

	rollups, err := dbaccess.RollupsAfter(context, syncState.NextRollupID)
	if err != nil {
		return errors.Wrap(err, "failed to read rollups to mirror")
	}
	for _, rollup := range rollups {
		if err := s.mirrorRollup(db, rollup); err != nil {
			return err
		}
		syncState.NextRollupID = rollup.ID + 1
	}

	pendingTxs, err := dbaccess.PendingTxs(context)
	if err != nil {
		return errors.Wrap(err, "failed to count pending transactions")
	}
	syncState.PendingTxCount = len(pendingTxs)
	syncState.UpdatedAt = time.Now()
	if syncState.ID == 0 {
		syncState.ID = 1
	}
	return errors.WithStack(db.Save(syncState).Error)
}

// mirrorRollup writes one rollup and its transactions into the mirror.
func (s *Sync) mirrorRollup(db *gorm.DB, rollup *rolluptx.Rollup) error {
	assetIDs := make([]string, len(rollup.AssetIDs))
	for i, assetID := range rollup.AssetIDs {
		assetIDs[i] = strconv.FormatUint(uint64(assetID), 10)
	}
	var bridgeCalls []string
	for _, bridgeCallData := range rollup.BridgeCallDatas {
		if bridgeCallData.IsZero() {
			continue
		}
		bridgeCalls = append(bridgeCalls, bridgeCallData.BigInt().Text(16))
	}

	rollupModel := &models.Rollup{
		RollupID:       rollup.ID,
		Created:        rollup.Created,
		Settled:        rollup.Settled,
		NumTxs:         len(rollup.TxIDs),
		AssetIDs:       strings.Join(assetIDs, ","),
		BridgeCallData: strings.Join(bridgeCalls, ","),
	}
	if err := db.Create(rollupModel).Error; err != nil {
		return errors.Wrapf(err, "failed to mirror rollup %d", rollup.ID)
	}
	for position, txID := range rollup.TxIDs {
		txModel := &models.Transaction{
			TransactionID: hex.EncodeToString(txID[:]),
			RollupID:      rollup.ID,
			Position:      position,
		}
		if err := db.Create(txModel).Error; err != nil {
			return errors.Wrapf(err, "failed to mirror tx %s", txID)
		}
	}
	log.Debugf("Mirrored rollup %d with %d txs", rollup.ID, len(rollup.TxIDs))
	return nil
}
