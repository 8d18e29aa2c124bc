package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
)

func (e *esplora) GetBlockHeight(ctx context.Context) (int64, error) {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	resp, err := e.get(ctx, "get block height", url)
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(resp), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error on parsing block height: %s", err)
	}
	return height, nil
}

func (e *esplora) GetRecommendedFeeRates(
	ctx context.Context,
) (*explorer.FeeRates, error) {
	resp, err := e.get(ctx, "get recommended fees", e.feeURL)
	if err != nil {
		return nil, err
	}

	var fees recommendedFees
	if err := json.Unmarshal([]byte(resp), &fees); err != nil {
		return nil, fmt.Errorf("error on parsing recommended fees: %s", err)
	}
	if err := fees.validate(); err != nil {
		return nil, err
	}
	return fees.toFeeRates(), nil
}
