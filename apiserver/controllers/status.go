package controllers

import (
	"net/http"

	"github.com/rollupnet/rollupd/apiserver/database"
	"github.com/rollupnet/rollupd/apiserver/models"
	"github.com/rollupnet/rollupd/apiserver/utils"
)

// statusResponse reports the mirror's view of the coordinator.
type statusResponse struct {
	NextRollupID   uint64 `json:"nextRollupId"`
	RollupCount    int    `json:"rollupCount"`
	PendingTxCount int    `json:"pendingTxCount"`
}

// GetStatusHandler returns the coordinator status.
func GetStatusHandler() (interface{}, *utils.HandlerError) {
	db, err := database.DB()
	if err != nil {
		return nil, utils.NewInternalServerHandlerError(err.Error())
	}

	syncState := &models.SyncState{}
	db.First(&syncState)
	if syncState.ID == 0 {
		return nil, utils.NewHandlerError(http.StatusServiceUnavailable,
			"The mirror has not synced yet.")
	}

	var rollupCount int
	db.Model(&models.Rollup{}).Count(&rollupCount)

	return &statusResponse{
		NextRollupID:   syncState.NextRollupID,
		RollupCount:    rollupCount,
		PendingTxCount: syncState.PendingTxCount,
	}, nil
}
