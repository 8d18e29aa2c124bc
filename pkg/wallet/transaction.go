package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

const (
	// DefaultDustThreshold is the minimum value in satoshis of the change
	// output, smaller changes are left to miners
	DefaultDustThreshold = 546

	txVersion = 2
)

// BuildTxOpts is the struct given to BuildTransaction method
type BuildTxOpts struct {
	FromAddress string
	// FromPrivateKey is the WIF key controlling FromAddress
	FromPrivateKey string
	ToAddress      string
	Amount         uint64
	Utxos          []explorer.Utxo
	Fee            uint64
	// ChangeAddress defaults to FromAddress
	ChangeAddress string
	// DustThreshold defaults to DefaultDustThreshold
	DustThreshold uint64
	Network       string
}

func (o BuildTxOpts) validate() error {
	if o.Network == "" {
		return ErrNullNetwork
	}
	if !IsValidNetwork(o.Network) {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, o.Network)
	}
	if len(o.FromAddress) <= 0 {
		return ErrNullFromAddress
	}
	if len(o.FromPrivateKey) <= 0 {
		return ErrNullPrivateKey
	}
	if len(o.ToAddress) <= 0 {
		return ErrNullToAddress
	}
	if o.Amount == 0 {
		return ErrZeroOutputAmount
	}
	if len(o.Utxos) <= 0 {
		return ErrEmptyInputs
	}
	seen := make(map[string]struct{}, len(o.Utxos))
	for _, u := range o.Utxos {
		if _, err := chainhash.NewHashFromStr(u.TxID); err != nil {
			return fmt.Errorf("invalid utxo txid %s: %w", u.TxID, err)
		}
		if _, ok := seen[u.Key()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatedInput, u.Key())
		}
		seen[u.Key()] = struct{}{}
	}
	return nil
}

// BuildTxResult is the signed transaction returned by BuildTransaction.
type BuildTxResult struct {
	Tx            *wire.MsgTx
	TxHex         string
	TxID          string
	Fee           uint64
	Change        uint64
	ChangeAddress string
}

// BuildTransaction crafts and signs a transaction spending all the given
// utxos of FromAddress. The first output pays Amount to ToAddress, the
// second one, if not dust, sends back the change to ChangeAddress. A dust
// change is added to the fee so that inputs always equal outputs plus fee.
// Every input is signed according to the kind of FromAddress, with a legacy
// scriptSig for P2PKH and with a witness for P2WPKH.
func BuildTransaction(opts BuildTxOpts) (*BuildTxResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	params, _ := NetworkParams(opts.Network)
	keyPair, err := ParseWIF(opts.FromPrivateKey, params)
	if err != nil {
		return nil, err
	}
	from, err := DecodeAddress(opts.FromAddress, params)
	if err != nil {
		return nil, err
	}
	if err := checkKeyControlsAddress(keyPair, from, params); err != nil {
		return nil, err
	}
	to, err := DecodeAddress(opts.ToAddress, params)
	if err != nil {
		return nil, err
	}
	changeAddress := opts.ChangeAddress
	if changeAddress == "" {
		changeAddress = opts.FromAddress
	}
	change, err := DecodeAddress(changeAddress, params)
	if err != nil {
		return nil, err
	}

	dustThreshold := opts.DustThreshold
	if dustThreshold == 0 {
		dustThreshold = DefaultDustThreshold
	}

	totalInput := sumUtxos(opts.Utxos)
	if totalInput < opts.Amount+opts.Fee {
		return nil, &InsufficientFundsError{
			Needed:    opts.Amount + opts.Fee,
			Available: totalInput,
			Fee:       opts.Fee,
		}
	}

	tx := wire.NewMsgTx(txVersion)
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(opts.Utxos))
	for _, u := range opts.Utxos {
		hash, _ := chainhash.NewHashFromStr(u.TxID)
		outpoint := wire.NewOutPoint(hash, u.Vout)
		tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
		prevOuts[*outpoint] = wire.NewTxOut(int64(u.Value), from.ScriptPubKey)
	}

	tx.AddTxOut(wire.NewTxOut(int64(opts.Amount), to.ScriptPubKey))

	fee := opts.Fee
	changeAmount := totalInput - opts.Amount - opts.Fee
	if changeAmount >= dustThreshold {
		tx.AddTxOut(wire.NewTxOut(int64(changeAmount), change.ScriptPubKey))
	} else {
		fee += changeAmount
		changeAmount = 0
		changeAddress = ""
	}

	if err := signTransaction(tx, from.Kind, keyPair, prevOuts); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}

	return &BuildTxResult{
		Tx:            tx,
		TxHex:         hex.EncodeToString(buf.Bytes()),
		TxID:          tx.TxHash().String(),
		Fee:           fee,
		Change:        changeAmount,
		ChangeAddress: changeAddress,
	}, nil
}

func checkKeyControlsAddress(
	keyPair *KeyPair, addr *DecodedAddress, params *chaincfg.Params,
) error {
	expected, err := EncodeAddress(keyPair.PublicKey, addr.Kind, params)
	if err != nil {
		return err
	}
	if expected != addr.Address.EncodeAddress() {
		return ErrKeyAddressMismatch
	}
	return nil
}

// TxOutputsSum returns the sum of the output values of the tx.
func TxOutputsSum(tx *wire.MsgTx) uint64 {
	var total uint64
	for _, out := range tx.TxOut {
		total += uint64(out.Value)
	}
	return total
}
