package controllers

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/rollupnet/rollupd/apiserver/database"
	"github.com/rollupnet/rollupd/apiserver/models"
	"github.com/rollupnet/rollupd/apiserver/utils"
	"github.com/rollupnet/rollupd/rolluptx"
)

// transactionResponse is the JSON form of a mirrored transaction.
type transactionResponse struct {
	TransactionID string `json:"transactionId"`
	RollupID      uint64 `json:"rollupId"`
	Position      int    `json:"position"`
}

// GetTransactionByIDHandler returns a settled transaction by its id.
func GetTransactionByIDHandler(txID string) (interface{}, *utils.HandlerError) {
	if bytes, err := hex.DecodeString(txID); err != nil || len(bytes) != rolluptx.TxIDSize {
		return nil, utils.NewHandlerError(http.StatusUnprocessableEntity,
			fmt.Sprintf("The given txid is not a hex-encoded %d-byte hash.", rolluptx.TxIDSize))
	}

	db, err := database.DB()
	if err != nil {
		return nil, utils.NewInternalServerHandlerError(err.Error())
	}

	tx := &models.Transaction{}
	db.Where(&models.Transaction{TransactionID: txID}).First(&tx)
	if tx.ID == 0 {
		return nil, utils.NewHandlerError(http.StatusNotFound,
			"No transaction with the given txid was found.")
	}
	return &transactionResponse{
		TransactionID: tx.TransactionID,
		RollupID:      tx.RollupID,
		Position:      tx.Position,
	}, nil
}
