// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"time"

	"github.com/rollupnet/rollupd/rolluptx"
)

// Timeout is a publish deadline aligned to a rollup-number boundary.
type Timeout struct {
	// Time is the wall-clock boundary, in UTC.
	Time time.Time

	// RollupNumber is the boundary's index: Time divided by the base
	// publish interval.
	RollupNumber uint64
}

// RollupTimeouts carries the base publish deadline together with the deadline
// of every frequency-tracked bridge.  BaseTimeout is nil when the base publish
// interval is below one second, which disables deadline tracking altogether.
type RollupTimeouts struct {
	BaseTimeout    *Timeout
	BridgeTimeouts map[rolluptx.BridgeCallData]Timeout
}

// PublishTimeManager computes rollup-number-aligned wall-clock deadlines from
// the base publish interval and the per-bridge frequency configuration.
//
// A bridge with rollup frequency n is serviced every n-th base boundary, so
// every bridge deadline coincides with a base deadline by construction.
type PublishTimeManager struct {
	baseInterval   time.Duration
	bridgeResolver BridgeResolver
	timeSource     TimeSource
}

// NewPublishTimeManager returns a publish time manager computing deadlines
// against the given time source.
func NewPublishTimeManager(baseInterval time.Duration, bridgeResolver BridgeResolver,
	timeSource TimeSource) *PublishTimeManager {

	return &PublishTimeManager{
		baseInterval:   baseInterval,
		bridgeResolver: bridgeResolver,
		timeSource:     timeSource,
	}
}

// LastTimeouts returns the most recent past deadline boundaries.
func (m *PublishTimeManager) LastTimeouts() RollupTimeouts {
	return m.timeouts(0)
}

// NextTimeouts returns the next future deadline boundaries.
func (m *PublishTimeManager) NextTimeouts() RollupTimeouts {
	return m.timeouts(1)
}

// timeouts computes the boundary at the given offset from the last one: 0 for
// the most recent past boundary, 1 for the next future one.
func (m *PublishTimeManager) timeouts(offset uint64) RollupTimeouts {
	timeouts := RollupTimeouts{
		BridgeTimeouts: make(map[rolluptx.BridgeCallData]Timeout),
	}
	if m.baseInterval < time.Second {
		return timeouts
	}

	baseIntervalSecs := int64(m.baseInterval / time.Second)
	nowSecs := m.timeSource.Now().Unix()

	baseRollupNumber := uint64(nowSecs/baseIntervalSecs) + offset
	timeouts.BaseTimeout = &Timeout{
		Time:         time.Unix(int64(baseRollupNumber)*baseIntervalSecs, 0).UTC(),
		RollupNumber: baseRollupNumber,
	}

	for _, config := range m.bridgeResolver.BridgeConfigs() {
		if config.RollupFrequency < 1 {
			continue
		}
		bridgeIntervalSecs := baseIntervalSecs * int64(config.RollupFrequency)
		bridgeRollupNumber := uint64(nowSecs/bridgeIntervalSecs) + offset
		timeouts.BridgeTimeouts[config.BridgeCallData] = Timeout{
			Time:         time.Unix(int64(bridgeRollupNumber)*bridgeIntervalSecs, 0).UTC(),
			RollupNumber: bridgeRollupNumber * uint64(config.RollupFrequency),
		}
	}
	return timeouts
}
