package controllers

import (
	"net/http"
	"strconv"

	"github.com/rollupnet/rollupd/apiserver/database"
	"github.com/rollupnet/rollupd/apiserver/models"
	"github.com/rollupnet/rollupd/apiserver/utils"
)

// rollupResponse is the JSON form of a mirrored rollup.
type rollupResponse struct {
	RollupID       string  `json:"rollupId"`
	Created        string  `json:"created"`
	Settled        *string `json:"settled"`
	NumTxs         int     `json:"numTxs"`
	AssetIDs       string  `json:"assetIds"`
	BridgeCallData string  `json:"bridgeCallData"`
}

func convertRollupModelToResponse(rollup *models.Rollup) *rollupResponse {
	response := &rollupResponse{
		RollupID:       strconv.FormatUint(rollup.RollupID, 10),
		Created:        rollup.Created.UTC().Format("2006-01-02T15:04:05Z"),
		NumTxs:         rollup.NumTxs,
		AssetIDs:       rollup.AssetIDs,
		BridgeCallData: rollup.BridgeCallData,
	}
	if rollup.Settled != nil {
		settled := rollup.Settled.UTC().Format("2006-01-02T15:04:05Z")
		response.Settled = &settled
	}
	return response
}

// GetRollupByIDHandler returns a rollup by its rollup id.
func GetRollupByIDHandler(rollupID string) (interface{}, *utils.HandlerError) {
	id, err := strconv.ParseUint(rollupID, 10, 64)
	if err != nil {
		return nil, utils.NewHandlerError(http.StatusUnprocessableEntity,
			"The given rollup id is not a decimal number.")
	}

	db, err := database.DB()
	if err != nil {
		return nil, utils.NewInternalServerHandlerError(err.Error())
	}

	rollup := &models.Rollup{}
	// An explicit condition: rollup id 0 is a valid id, and gorm ignores
	// zero-valued struct fields.
	db.Where("rollup_id = ?", id).First(&rollup)
	if rollup.ID == 0 {
		return nil, utils.NewHandlerError(http.StatusNotFound,
			"No rollup with the given id was found.")
	}
	return convertRollupModelToResponse(rollup), nil
}
