package wallet

import (
	"sort"

	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

// numSelectionOutputs is the number of outputs assumed while selecting
// coins: recipient plus change.
const numSelectionOutputs = 2

// SelectUtxosOpts is the struct given to SelectUtxos method
type SelectUtxosOpts struct {
	Utxos        []explorer.Utxo
	TargetAmount uint64
	FeeRate      uint64
	ScriptType   int
}

func (o SelectUtxosOpts) validate() error {
	if o.TargetAmount == 0 {
		return ErrZeroOutputAmount
	}
	if o.FeeRate == 0 {
		return ErrInvalidFeeRate
	}
	return nil
}

// Selection is the result of a coin selection.
type Selection struct {
	Utxos  []explorer.Utxo
	Fee    FeeEstimate
	Change uint64
}

// Total returns the sum of the selected utxos.
func (s *Selection) Total() uint64 {
	return sumUtxos(s.Utxos)
}

// SelectUtxos performs a greedy coin selection over the given list of Utxos:
// candidates are sorted by value in descending order and added one by one
// until they cover TargetAmount plus the fee of the transaction spending
// them. The fee is estimated again at every step since it grows with the
// number of inputs.
// In case the utxos are not enough, an *InsufficientFundsError is returned.
func SelectUtxos(opts SelectUtxosOpts) (*Selection, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	candidates := make([]explorer.Utxo, len(opts.Utxos))
	copy(candidates, opts.Utxos)
	sortUtxos(candidates)

	selected := make([]explorer.Utxo, 0, len(candidates))
	total := uint64(0)
	fee := EstimateFee(1, numSelectionOutputs, opts.ScriptType, opts.FeeRate)

	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Value
		fee = EstimateFee(
			len(selected), numSelectionOutputs, opts.ScriptType, opts.FeeRate,
		)
		if total >= opts.TargetAmount+fee.Fee {
			return &Selection{
				Utxos:  selected,
				Fee:    fee,
				Change: total - opts.TargetAmount - fee.Fee,
			}, nil
		}
	}

	return nil, &InsufficientFundsError{
		Needed:    opts.TargetAmount + fee.Fee,
		Available: total,
		Fee:       fee.Fee,
	}
}

// sortUtxos orders by value desc, ties broken by outpoint so that selection
// is deterministic.
func sortUtxos(utxos []explorer.Utxo) {
	sort.SliceStable(utxos, func(i, j int) bool {
		if utxos[i].Value != utxos[j].Value {
			return utxos[i].Value > utxos[j].Value
		}
		if utxos[i].TxID != utxos[j].TxID {
			return utxos[i].TxID < utxos[j].TxID
		}
		return utxos[i].Vout < utxos[j].Vout
	})
}

func sumUtxos(utxos []explorer.Utxo) uint64 {
	var total uint64
	for _, u := range utxos {
		total += u.Value
	}
	return total
}
