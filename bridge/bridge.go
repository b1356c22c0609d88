// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bridge

import (
	"github.com/rollupnet/rollupd/coordinator"
	"github.com/rollupnet/rollupd/rolluptx"
)

// StaticResolver is a BridgeResolver serving a configuration set fixed at
// construction, the shape a registry synced from the settlement contract
// would also satisfy.
type StaticResolver struct {
	configs      []coordinator.BridgeConfig
	descriptions map[rolluptx.BridgeCallData]string
}

// NewStaticResolver returns a resolver over the given bridge configurations.
func NewStaticResolver(configs []coordinator.BridgeConfig) *StaticResolver {
	return &StaticResolver{
		configs:      configs,
		descriptions: make(map[rolluptx.BridgeCallData]string),
	}
}

// SetDescription registers a human-readable description for a bridge call.
func (r *StaticResolver) SetDescription(bridgeCallData rolluptx.BridgeCallData, description string) {
	r.descriptions[bridgeCallData] = description
}

// BridgeConfigs returns the configuration of every known bridge.
func (r *StaticResolver) BridgeConfigs() []coordinator.BridgeConfig {
	return r.configs
}

// BridgeDescription returns the registered description of the bridge call.
func (r *StaticResolver) BridgeDescription(bridgeCallData rolluptx.BridgeCallData) (string, bool) {
	description, ok := r.descriptions[bridgeCallData]
	return description, ok
}
