// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/params"
	"github.com/rollupnet/rollupd/rolluptx"
)

// fakeTimeSource is a settable TimeSource so tests control the wall clock.
type fakeTimeSource struct {
	sync.Mutex
	now time.Time
}

func newFakeTimeSource(now time.Time) *fakeTimeSource {
	return &fakeTimeSource{now: now}
}

func (s *fakeTimeSource) Now() time.Time {
	s.Lock()
	defer s.Unlock()
	return s.now
}

func (s *fakeTimeSource) Set(now time.Time) {
	s.Lock()
	defer s.Unlock()
	s.now = now
}

// fakeBridgeResolver serves a static bridge configuration set.
type fakeBridgeResolver struct {
	configs []BridgeConfig
}

func (r *fakeBridgeResolver) BridgeConfigs() []BridgeConfig {
	return r.configs
}

func (r *fakeBridgeResolver) BridgeDescription(bridgeCallData rolluptx.BridgeCallData) (string, bool) {
	return "", false
}

// fakeFeeResolver quotes flat costs so scenario arithmetic stays legible:
// every slot reserves baseGas, every transaction costs txGas in total and
// callData bytes of calldata, and bridges cost what the per-bridge maps say.
type fakeFeeResolver struct {
	baseGas         uint64
	txGas           uint64
	callData        uint64
	singleBridgeGas map[rolluptx.BridgeCallData]uint64
	fullBridgeGas   map[rolluptx.BridgeCallData]uint64
	nonFeeAssets    map[uint32]bool
}

func newFakeFeeResolver() *fakeFeeResolver {
	return &fakeFeeResolver{
		baseGas:         1000,
		txGas:           2000,
		callData:        100,
		singleBridgeGas: make(map[rolluptx.BridgeCallData]uint64),
		fullBridgeGas:   make(map[rolluptx.BridgeCallData]uint64),
		nonFeeAssets:    make(map[uint32]bool),
	}
}

func (r *fakeFeeResolver) UnadjustedBaseVerificationGas() uint64 {
	return r.baseGas
}

func (r *fakeFeeResolver) UnadjustedTxGas(assetID uint32, txType rolluptx.TxType) uint64 {
	return r.txGas
}

func (r *fakeFeeResolver) TxCallData(txType rolluptx.TxType) uint64 {
	return r.callData
}

func (r *fakeFeeResolver) SingleBridgeTxGas(bridgeCallData rolluptx.BridgeCallData) uint64 {
	return r.singleBridgeGas[bridgeCallData]
}

func (r *fakeFeeResolver) FullBridgeGasFromContract(bridgeCallData rolluptx.BridgeCallData) uint64 {
	return r.fullBridgeGas[bridgeCallData]
}

func (r *fakeFeeResolver) IsFeePayingAsset(assetID uint32) bool {
	return !r.nonFeeAssets[assetID]
}

func (r *fakeFeeResolver) MaxUnadjustedGas() uint64 {
	return r.txGas
}

func (r *fakeFeeResolver) MaxTxCallData() uint64 {
	return r.callData
}

// fakeCreator records circuit and proof calls and optionally fails them.
type fakeCreator struct {
	sync.Mutex
	createRollupCalls [][]*rolluptx.RollupTx
	isFirstFlags      []bool
	createCalls       int
	interrupted       bool
	createRollupErr   error
	createErr         error
}

func (c *fakeCreator) CreateRollup(txs []*rolluptx.RollupTx, bridgeCallDatas []rolluptx.BridgeCallData,
	assetIDs []uint32, isFirst bool) (*CircuitInput, error) {

	c.Lock()
	defer c.Unlock()
	if c.createRollupErr != nil {
		return nil, c.createRollupErr
	}
	c.createRollupCalls = append(c.createRollupCalls, txs)
	c.isFirstFlags = append(c.isFirstFlags, isFirst)
	return &CircuitInput{}, nil
}

func (c *fakeCreator) Create(txs []*rolluptx.RollupTx, circuitInput *CircuitInput) (*InnerProof, error) {
	c.Lock()
	defer c.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.createCalls++
	return &InnerProof{}, nil
}

func (c *fakeCreator) Interrupt() {
	c.Lock()
	defer c.Unlock()
	c.interrupted = true
}

// fakeAggregator combines fake proofs into a rollup record.
type fakeAggregator struct {
	nextRollupID uint64
	interrupted  bool
	aggregateErr error
	lastBridges  []rolluptx.BridgeCallData
	lastAssets   []uint32
}

func (a *fakeAggregator) AggregateRollupProofs(innerProofs []*InnerProof,
	paddedBridgeCallDatas []rolluptx.BridgeCallData, assetIDs []uint32) (*rolluptx.Rollup, error) {

	if a.aggregateErr != nil {
		return nil, a.aggregateErr
	}
	a.lastBridges = paddedBridgeCallDatas
	a.lastAssets = assetIDs
	rollup := &rolluptx.Rollup{ID: a.nextRollupID}
	a.nextRollupID++
	return rollup, nil
}

func (a *fakeAggregator) Interrupt() {
	a.interrupted = true
}

// fakePublisher accepts or rejects published rollups.
type fakePublisher struct {
	accept     bool
	publishErr error
	published  []*rolluptx.Rollup
}

func (p *fakePublisher) PublishRollup(rollup *rolluptx.Rollup, estimatedGas uint64) (bool, error) {
	if p.publishErr != nil {
		return false, p.publishErr
	}
	p.published = append(p.published, rollup)
	return p.accept, nil
}

// coordinatorHarness bundles a coordinator with its fakes.
type coordinatorHarness struct {
	coordinator *Coordinator
	params      *params.Params
	feeResolver *fakeFeeResolver
	creator     *fakeCreator
	aggregator  *fakeAggregator
	publisher   *fakePublisher
}

// newCoordinatorHarness returns a coordinator over fresh fakes.  The default
// shape is 2 inner txs by 2 outer proofs with room for everything a scenario
// throws at it.
func newCoordinatorHarness(deploymentParams *params.Params) (*coordinatorHarness, error) {
	if deploymentParams == nil {
		deploymentParams = &params.Params{
			NumInnerRollupTxs:    2,
			NumOuterRollupProofs: 2,
			MaxGasForRollup:      10000000,
			MaxCallDataForRollup: 100000,
			PublishInterval:      time.Hour,
		}
	}
	harness := &coordinatorHarness{
		params:      deploymentParams,
		feeResolver: newFakeFeeResolver(),
		creator:     &fakeCreator{},
		aggregator:  &fakeAggregator{},
		publisher:   &fakePublisher{accept: true},
	}
	var err error
	harness.coordinator, err = New(Config{
		Params:      deploymentParams,
		FeeResolver: harness.feeResolver,
		Creator:     harness.creator,
		Aggregator:  harness.aggregator,
		Publisher:   harness.publisher,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create coordinator")
	}
	return harness, nil
}

// reset replaces the harness coordinator with a fresh one for the next tick.
func (h *coordinatorHarness) reset() error {
	coordinator, err := New(Config{
		Params:      h.params,
		FeeResolver: h.feeResolver,
		Creator:     h.creator,
		Aggregator:  h.aggregator,
		Publisher:   h.publisher,
	})
	if err != nil {
		return err
	}
	h.coordinator = coordinator
	return nil
}

var testTxSeq uint32

// newTestTx returns a transaction of the given type with distinct commitments
// and nullifiers.
func newTestTx(txType rolluptx.TxType, created time.Time, excessGas int64) *rolluptx.RollupTx {
	testTxSeq++
	tx := &rolluptx.RollupTx{
		TxType:     txType,
		Created:    created,
		FeeAssetID: 0,
		ExcessGas:  excessGas,
	}
	tx.NoteCommitment1[0] = byte(testTxSeq)
	tx.NoteCommitment1[1] = 1
	tx.NoteCommitment2[0] = byte(testTxSeq)
	tx.NoteCommitment2[1] = 2
	tx.Nullifier1[0] = byte(testTxSeq)
	tx.Nullifier1[1] = 3
	tx.Nullifier2[0] = byte(testTxSeq)
	tx.Nullifier2[1] = 4
	tx.ID = rolluptx.CalcTxID(tx)
	return tx
}

// newTestDefiTx returns a DeFi deposit for the given bridge.
func newTestDefiTx(bridgeCallData rolluptx.BridgeCallData, created time.Time,
	excessGas int64) *rolluptx.RollupTx {

	tx := newTestTx(rolluptx.TxTypeDefiDeposit, created, excessGas)
	tx.BridgeCallData = &bridgeCallData
	tx.ID = rolluptx.CalcTxID(tx)
	return tx
}

// testBridge returns a distinct bridge call for the given address id.
func testBridge(bridgeAddressID uint32) rolluptx.BridgeCallData {
	return rolluptx.BridgeCallData{
		BridgeAddressID: bridgeAddressID,
		InputAssetIDA:   0,
		OutputAssetIDA:  0,
	}
}
