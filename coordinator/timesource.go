// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"time"
)

// TimeSource provides the coordinator's view of wall-clock time.  Deadline
// arithmetic is performed in UTC, so implementations may return times in any
// location.  Tests substitute a settable fake.
type TimeSource interface {
	// Now returns the current time.
	Now() time.Time
}

type systemTimeSource struct{}

func (systemTimeSource) Now() time.Time {
	return time.Now()
}

// NewSystemTimeSource returns a TimeSource backed by the system clock.
func NewSystemTimeSource() TimeSource {
	return systemTimeSource{}
}
