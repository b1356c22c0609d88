// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/params"
	"github.com/rollupnet/rollupd/rolluptx"
)

// aggregateAndPublish turns the selected batch into a published rollup:
// inner circuits are built sequentially (they mutate the shared Merkle
// world-state), inner proofs are produced in parallel (they are pure
// functions of their circuit inputs), the proofs are aggregated, and the
// result is handed to the publisher.  It returns whether the settlement layer
// accepted the rollup.
func (c *Coordinator) aggregateAndPublish(profile *RollupProfile) (bool, error) {
	chunks := c.chunkSelected()
	paddedBridgeCallDatas := c.paddedBridgeCallDatas()
	assetIDs := c.consumed.AssetIDs

	circuitInputs := make([]*CircuitInput, len(chunks))
	for i, chunk := range chunks {
		circuitInput, err := c.cfg.Creator.CreateRollup(chunk, paddedBridgeCallDatas,
			assetIDs, i == 0)
		if err != nil {
			return false, errors.Wrapf(err, "failed to create inner rollup %d", i)
		}
		circuitInputs[i] = circuitInput
	}

	innerProofs := make([]*InnerProof, len(chunks))
	proofErrs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i := range chunks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			innerProofs[i], proofErrs[i] = c.cfg.Creator.Create(chunks[i], circuitInputs[i])
		}(i)
	}
	wg.Wait()
	for i, err := range proofErrs {
		if err != nil {
			return false, errors.Wrapf(err, "failed to prove inner rollup %d", i)
		}
	}

	rollup, err := c.cfg.Aggregator.AggregateRollupProofs(innerProofs,
		paddedBridgeCallDatas, assetIDs)
	if err != nil {
		return false, errors.Wrap(err, "failed to aggregate inner proofs")
	}

	// Checkpoint: about to publish.
	if err := c.checkpoint(); err != nil {
		return false, err
	}
	c.setState(statePublishing)

	log.Infof("Publishing rollup %d with %d txs", rollup.ID, profile.TotalTxs)
	accepted, err := c.cfg.Publisher.PublishRollup(rollup, profile.TotalGas)
	if err != nil {
		return false, errors.Wrapf(err, "failed to publish rollup %d", rollup.ID)
	}
	return accepted, nil
}

// chunkSelected splits the selected transactions into contiguous inner-rollup
// chunks.
func (c *Coordinator) chunkSelected() [][]*rolluptx.RollupTx {
	chunkSize := c.cfg.Params.NumInnerRollupTxs
	var chunks [][]*rolluptx.RollupTx
	for start := 0; start < len(c.selected); start += chunkSize {
		end := start + chunkSize
		if end > len(c.selected) {
			end = len(c.selected)
		}
		chunks = append(chunks, c.selected[start:end])
	}
	return chunks
}

// paddedBridgeCallDatas right-pads the admitted bridge-call vector with zero
// entries to the deployment's bridge-slot count, the shape the published
// rollup carries.
func (c *Coordinator) paddedBridgeCallDatas() []rolluptx.BridgeCallData {
	padded := make([]rolluptx.BridgeCallData, params.NumBridgeCallsPerBlock)
	copy(padded, c.consumed.BridgeCallDatas)
	return padded
}
