// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signal

import (
	"github.com/btcsuite/btclog"

	"github.com/rollupnet/rollupd/logger"
)

var log btclog.Logger

func init() {
	log, _ = logger.Get(logger.SubsystemTags.ROLD)
}
