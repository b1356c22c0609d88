// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rolluptx

// TxType identifies the kind of proof a pending transaction carries.  The
// numeric values are part of the proof-data encoding and must not be
// reordered.
type TxType uint8

const (
	// TxTypeDeposit moves funds from a Layer-1 balance into a new note.
	TxTypeDeposit TxType = iota

	// TxTypeTransfer spends notes and creates new ones for another owner.
	TxTypeTransfer

	// TxTypeWithdrawLowGas withdraws to a Layer-1 address whose receive
	// path is plain (an EOA).
	TxTypeWithdrawLowGas

	// TxTypeWithdrawHighGas withdraws to a Layer-1 address that may run
	// code on receive and therefore needs a larger gas stipend.
	TxTypeWithdrawHighGas

	// TxTypeAccount registers or migrates account keys.  Account
	// transactions pay no fee.
	TxTypeAccount

	// TxTypeDefiDeposit moves note value into a DeFi bridge interaction.
	TxTypeDefiDeposit

	// TxTypeDefiClaim converts the result of a settled bridge interaction
	// back into notes.
	TxTypeDefiClaim

	numTxTypes int = iota
)

// NumTxTypes is the number of distinct transaction types.
const NumTxTypes = numTxTypes

var txTypeStrings = map[TxType]string{
	TxTypeDeposit:         "DEPOSIT",
	TxTypeTransfer:        "TRANSFER",
	TxTypeWithdrawLowGas:  "WITHDRAW_LOW_GAS",
	TxTypeWithdrawHighGas: "WITHDRAW_HIGH_GAS",
	TxTypeAccount:         "ACCOUNT",
	TxTypeDefiDeposit:     "DEFI_DEPOSIT",
	TxTypeDefiClaim:       "DEFI_CLAIM",
}

// String returns the TxType in human-readable form.
func (t TxType) String() string {
	if s, ok := txTypeStrings[t]; ok {
		return s
	}
	return "UNKNOWN"
}
