package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

func signTransaction(
	tx *wire.MsgTx,
	kind AddressKind,
	keyPair *KeyPair,
	prevOuts map[wire.OutPoint]*wire.TxOut,
) error {
	scriptCode, err := p2pkhScriptCode(keyPair)
	if err != nil {
		return &SigningError{Err: err}
	}

	var sigHashes *txscript.TxSigHashes
	if kind == Segwit {
		sigHashes = txscript.NewTxSigHashes(
			tx, txscript.NewMultiPrevOutFetcher(prevOuts),
		)
	}

	for i, in := range tx.TxIn {
		prevOut, ok := prevOuts[in.PreviousOutPoint]
		if !ok {
			return &SigningError{InputIndex: i, Err: errors.New("prevout not found")}
		}

		switch kind {
		case Legacy:
			err = signLegacyInput(tx, i, scriptCode, keyPair)
		case Segwit:
			err = signWitnessInput(tx, i, scriptCode, prevOut.Value, sigHashes, keyPair)
		default:
			err = ErrInvalidAddressKind
		}
		if err != nil {
			return &SigningError{InputIndex: i, Err: err}
		}
	}
	return nil
}

// signLegacyInput places <sig> <pubkey> in the scriptSig of the input.
func signLegacyInput(
	tx *wire.MsgTx, inIndex int, scriptCode []byte, keyPair *KeyPair,
) error {
	hashForSignature, err := txscript.CalcSignatureHash(
		scriptCode, txscript.SigHashAll, tx, inIndex,
	)
	if err != nil {
		return err
	}

	sig, err := signHash(hashForSignature, keyPair)
	if err != nil {
		return err
	}

	sigScript, err := txscript.NewScriptBuilder().
		AddData(sig).
		AddData(keyPair.PublicKey.SerializeCompressed()).
		Script()
	if err != nil {
		return err
	}

	tx.TxIn[inIndex].SignatureScript = sigScript
	tx.TxIn[inIndex].Witness = nil
	return nil
}

// signWitnessInput computes the BIP143 sighash of the input and places
// [sig, pubkey] in its witness, leaving the scriptSig empty.
func signWitnessInput(
	tx *wire.MsgTx,
	inIndex int,
	scriptCode []byte,
	prevOutValue int64,
	sigHashes *txscript.TxSigHashes,
	keyPair *KeyPair,
) error {
	hashForSignature, err := txscript.CalcWitnessSigHash(
		scriptCode, sigHashes, txscript.SigHashAll, tx, inIndex, prevOutValue,
	)
	if err != nil {
		return err
	}

	sig, err := signHash(hashForSignature, keyPair)
	if err != nil {
		return err
	}

	tx.TxIn[inIndex].Witness = wire.TxWitness{
		sig, keyPair.PublicKey.SerializeCompressed(),
	}
	tx.TxIn[inIndex].SignatureScript = nil
	return nil
}

// signHash produces a deterministic (RFC6979) signature, verifies it and
// returns its DER encoding with the SIGHASH_ALL byte appended.
func signHash(hash []byte, keyPair *KeyPair) ([]byte, error) {
	signature := ecdsa.Sign(keyPair.PrivateKey, hash)
	if !signature.Verify(hash, keyPair.PublicKey) {
		return nil, fmt.Errorf("signature verification failed")
	}
	return append(signature.Serialize(), byte(txscript.SigHashAll)), nil
}

// p2pkhScriptCode returns OP_DUP OP_HASH160 <hash160(pubkey)> OP_EQUALVERIFY
// OP_CHECKSIG, that is the script signed by both legacy and P2WPKH inputs.
func p2pkhScriptCode(keyPair *KeyPair) ([]byte, error) {
	pubkeyHash := btcutil.Hash160(keyPair.PublicKey.SerializeCompressed())
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pubkeyHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}
