package server

import (
	"github.com/btcsuite/btclog"

	"github.com/rollupnet/rollupd/logger"
)

var log btclog.Logger

func init() {
	log, _ = logger.Get(logger.SubsystemTags.APIS)
}
