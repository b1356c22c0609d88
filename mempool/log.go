// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/btcsuite/btclog"

	"github.com/rollupnet/rollupd/logger"
)

// log is the package's TXMP subsystem logger, taken from the shared logging
// backend at init.
var log btclog.Logger

func init() {
	log, _ = logger.Get(logger.SubsystemTags.TXMP)
}
