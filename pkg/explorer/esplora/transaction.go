package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

func (e *esplora) Broadcast(ctx context.Context, txHex string) (string, error) {
	url := fmt.Sprintf("%s/tx", e.apiURL)
	headers := map[string]string{
		"Content-Type": "text/plain",
	}

	resp, err := e.request(ctx, "broadcast", http.MethodPost, url, txHex, headers)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func (e *esplora) GetTransactionHistory(
	ctx context.Context, address string, limit int,
) ([]explorer.TxSummary, error) {
	url := fmt.Sprintf("%s/address/%s/txs", e.apiURL, address)
	resp, err := e.get(ctx, "get transaction history", url)
	if err != nil {
		return nil, err
	}

	var txs []tx
	if err := json.Unmarshal([]byte(resp), &txs); err != nil {
		return nil, fmt.Errorf("error on parsing transactions: %s", err)
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	if len(txs) <= 0 {
		return nil, nil
	}

	var tipHeight int64
	for _, t := range txs {
		if t.Status.Confirmed {
			if tipHeight, err = e.GetBlockHeight(ctx); err != nil {
				return nil, err
			}
			break
		}
	}

	history := make([]explorer.TxSummary, 0, len(txs))
	for _, t := range txs {
		history = append(history, t.toSummary(address, tipHeight, e.explorerURL))
	}
	return history, nil
}
