package esplora

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

/**** ADDRESS ****/

type addressStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
	TxCount      int   `json:"tx_count"`
}

type addressInfo struct {
	Address      string       `json:"address"`
	ChainStats   addressStats `json:"chain_stats"`
	MempoolStats addressStats `json:"mempool_stats"`
}

func (a addressInfo) toBalance(address string) *explorer.Balance {
	return &explorer.Balance{
		Address:     address,
		Confirmed:   a.ChainStats.FundedTxoSum - a.ChainStats.SpentTxoSum,
		Unconfirmed: a.MempoolStats.FundedTxoSum - a.MempoolStats.SpentTxoSum,
		TxCount:     a.ChainStats.TxCount + a.MempoolStats.TxCount,
	}
}

/**** STATUS ****/

type txStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	BlockTime   int64  `json:"block_time"`
}

func (s txStatus) confirmations(tipHeight int64) int64 {
	if !s.Confirmed || tipHeight < s.BlockHeight {
		return 0
	}
	return tipHeight - s.BlockHeight + 1
}

/**** UTXO ****/

type utxo struct {
	TxID   string   `json:"txid"`
	Vout   uint32   `json:"vout"`
	Value  uint64   `json:"value"`
	Status txStatus `json:"status"`
}

func (u utxo) validate() error {
	if _, err := chainhash.NewHashFromStr(u.TxID); err != nil || len(u.TxID) != 64 {
		return fmt.Errorf("invalid utxo txid %q", u.TxID)
	}
	if u.Value == 0 {
		return fmt.Errorf("utxo %s:%d has zero value", u.TxID, u.Vout)
	}
	return nil
}

func (u utxo) toUtxo(address string, tipHeight int64) explorer.Utxo {
	return explorer.Utxo{
		TxID:          u.TxID,
		Vout:          u.Vout,
		Value:         u.Value,
		Address:       address,
		Confirmed:     u.Status.Confirmed,
		BlockHeight:   u.Status.BlockHeight,
		Confirmations: u.Status.confirmations(tipHeight),
	}
}

/**** TRANSACTION ****/

type prevout struct {
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

type txInput struct {
	TxID    string   `json:"txid"`
	Vout    uint32   `json:"vout"`
	Prevout *prevout `json:"prevout"`
}

type txOutput struct {
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

type tx struct {
	TxID   string     `json:"txid"`
	Fee    uint64     `json:"fee"`
	Vin    []txInput  `json:"vin"`
	Vout   []txOutput `json:"vout"`
	Status txStatus   `json:"status"`
}

// toSummary returns the tx as seen from the given address. A tx spending
// coins of the address is sent, and its amount is everything paid to other
// addresses plus the fee, as a negative number. Otherwise the tx is received
// and the amount is the sum of the outputs paying the address.
func (t tx) toSummary(
	address string, tipHeight int64, explorerURL string,
) explorer.TxSummary {
	isSent := false
	for _, in := range t.Vin {
		if in.Prevout != nil && in.Prevout.ScriptPubKeyAddress == address {
			isSent = true
			break
		}
	}

	var amount int64
	direction := explorer.Received
	if isSent {
		direction = explorer.Sent
		var outgoing int64
		for _, out := range t.Vout {
			if out.ScriptPubKeyAddress != address {
				outgoing += out.Value
			}
		}
		amount = -(outgoing + int64(t.Fee))
	} else {
		for _, out := range t.Vout {
			if out.ScriptPubKeyAddress == address {
				amount += out.Value
			}
		}
	}

	summary := explorer.TxSummary{
		TxID:          t.TxID,
		Address:       address,
		Direction:     direction,
		Amount:        amount,
		Fee:           t.Fee,
		Confirmed:     t.Status.Confirmed,
		Confirmations: t.Status.confirmations(tipHeight),
		BlockHeight:   t.Status.BlockHeight,
		BlockHash:     t.Status.BlockHash,
	}
	if t.Status.BlockTime > 0 {
		summary.BlockTime = time.Unix(t.Status.BlockTime, 0).UTC()
	}
	if explorerURL != "" {
		summary.ExplorerURL = fmt.Sprintf("%s/tx/%s", explorerURL, t.TxID)
	}
	return summary
}

/**** FEES ****/

type recommendedFees struct {
	FastestFee  uint64 `json:"fastestFee"`
	HalfHourFee uint64 `json:"halfHourFee"`
	HourFee     uint64 `json:"hourFee"`
	EconomyFee  uint64 `json:"economyFee"`
	MinimumFee  uint64 `json:"minimumFee"`
}

func (f recommendedFees) validate() error {
	if f.FastestFee == 0 || f.HalfHourFee == 0 || f.HourFee == 0 {
		return fmt.Errorf("recommended fees must be greater than zero")
	}
	return nil
}

func (f recommendedFees) toFeeRates() *explorer.FeeRates {
	return &explorer.FeeRates{
		High:   f.FastestFee,
		Medium: f.HalfHourFee,
		Low:    f.HourFee,
	}
}
