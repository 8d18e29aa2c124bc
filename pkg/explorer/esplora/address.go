package esplora

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

func (e *esplora) GetBalance(
	ctx context.Context, address string,
) (*explorer.Balance, error) {
	url := fmt.Sprintf("%s/address/%s", e.apiURL, address)
	resp, err := e.get(ctx, "get balance", url)
	if err != nil {
		return nil, err
	}

	var info addressInfo
	if err := json.Unmarshal([]byte(resp), &info); err != nil {
		return nil, fmt.Errorf("error on parsing address info: %s", err)
	}
	return info.toBalance(address), nil
}

func (e *esplora) GetUtxos(
	ctx context.Context, address string,
) ([]explorer.Utxo, error) {
	url := fmt.Sprintf("%s/address/%s/utxo", e.apiURL, address)
	resp, err := e.get(ctx, "get utxos", url)
	if err != nil {
		return nil, err
	}

	var outs []utxo
	if err := json.Unmarshal([]byte(resp), &outs); err != nil {
		return nil, fmt.Errorf("error on parsing utxos: %s", err)
	}
	if len(outs) <= 0 {
		return nil, nil
	}

	tipHeight, err := e.tipHeightIfConfirmed(ctx, outs)
	if err != nil {
		return nil, err
	}

	utxos := make([]explorer.Utxo, 0, len(outs))
	for _, u := range outs {
		if err := u.validate(); err != nil {
			return nil, err
		}
		utxos = append(utxos, u.toUtxo(address, tipHeight))
	}
	return utxos, nil
}

func (e *esplora) tipHeightIfConfirmed(
	ctx context.Context, outs []utxo,
) (int64, error) {
	for _, u := range outs {
		if u.Status.Confirmed {
			return e.GetBlockHeight(ctx)
		}
	}
	return 0, nil
}
