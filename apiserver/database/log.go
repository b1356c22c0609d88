package database

import (
	"github.com/btcsuite/btclog"

	"github.com/rollupnet/rollupd/logger"
)

var log btclog.Logger

func init() {
	log, _ = logger.Get(logger.SubsystemTags.APIS)
}

// gormLogger routes gorm's log output into the API server subsystem log.
type gormLogger struct{}

func (gormLogger) Print(v ...interface{}) {
	log.Debugf("gorm: %v", v)
}
