package esplora_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer/esplora"
)

const (
	testAddress = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
	otherAddr   = "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r"
	txid1       = "1111111111111111111111111111111111111111111111111111111111111111"
	txid2       = "2222222222222222222222222222222222222222222222222222222222222222"
)

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/blocks/tip/height", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "1000")
	})
	mux.HandleFunc("/api/address/"+testAddress, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"address": "`+testAddress+`",
			"chain_stats": {"funded_txo_sum": 150000, "spent_txo_sum": 50000, "tx_count": 3},
			"mempool_stats": {"funded_txo_sum": 2000, "spent_txo_sum": 0, "tx_count": 1}
		}`)
	})
	mux.HandleFunc("/api/address/"+testAddress+"/utxo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"txid": "`+txid1+`", "vout": 0, "value": 50000,
			 "status": {"confirmed": true, "block_height": 995}},
			{"txid": "`+txid2+`", "vout": 1, "value": 2000,
			 "status": {"confirmed": false}}
		]`)
	})
	mux.HandleFunc("/api/address/"+testAddress+"/txs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"txid": "`+txid2+`", "fee": 200,
			 "vin": [{"txid": "`+txid1+`", "vout": 0,
			          "prevout": {"scriptpubkey_address": "`+testAddress+`", "value": 50000}}],
			 "vout": [{"scriptpubkey_address": "`+otherAddr+`", "value": 30000},
			          {"scriptpubkey_address": "`+testAddress+`", "value": 19800}],
			 "status": {"confirmed": false}},
			{"txid": "`+txid1+`", "fee": 150,
			 "vin": [{"txid": "`+txid2+`", "vout": 3,
			          "prevout": {"scriptpubkey_address": "`+otherAddr+`", "value": 80000}}],
			 "vout": [{"scriptpubkey_address": "`+testAddress+`", "value": 50000},
			          {"scriptpubkey_address": "`+otherAddr+`", "value": 29850}],
			 "status": {"confirmed": true, "block_height": 990, "block_hash": "abc",
			            "block_time": 1700000000}}
		]`)
	})
	mux.HandleFunc("/api/tx", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost || string(body) != "0200" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "sendrawtransaction RPC error: TX decode failed")
			return
		}
		fmt.Fprint(w, txid1)
	})
	mux.HandleFunc("/fees", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fastestFee": 12, "halfHourFee": 8, "hourFee": 3, "economyFee": 2, "minimumFee": 1}`)
	})
	mux.HandleFunc("/api/address/broken/utxo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "internal error")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T) explorer.Service {
	server := newTestServer(t)
	svc, err := esplora.NewService(esplora.ServiceOpts{
		APIURL: server.URL + "/api",
		FeeURL: server.URL + "/fees",
	})
	require.NoError(t, err)
	return svc
}

func TestGetBalance(t *testing.T) {
	svc := newTestService(t)

	balance, err := svc.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), balance.Confirmed)
	assert.Equal(t, int64(2000), balance.Unconfirmed)
	assert.Equal(t, int64(102000), balance.Total())
	assert.Equal(t, 4, balance.TxCount)
}

func TestGetUtxos(t *testing.T) {
	svc := newTestService(t)

	utxos, err := svc.GetUtxos(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, utxos, 2)

	assert.Equal(t, txid1, utxos[0].TxID)
	assert.Equal(t, uint64(50000), utxos[0].Value)
	assert.True(t, utxos[0].Confirmed)
	assert.Equal(t, int64(6), utxos[0].Confirmations)
	assert.Equal(t, testAddress, utxos[0].Address)

	assert.False(t, utxos[1].Confirmed)
	assert.Zero(t, utxos[1].Confirmations)
	assert.Equal(t, txid2+":1", utxos[1].Key())
}

func TestGetRecommendedFeeRates(t *testing.T) {
	svc := newTestService(t)

	rates, err := svc.GetRecommendedFeeRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, explorer.FeeRates{High: 12, Medium: 8, Low: 3}, *rates)

	rate, err := rates.ForPriority(explorer.LowPriority)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rate)
}

func TestBroadcast(t *testing.T) {
	svc := newTestService(t)

	txid, err := svc.Broadcast(context.Background(), "0200")
	require.NoError(t, err)
	assert.Equal(t, txid1, txid)

	_, err = svc.Broadcast(context.Background(), "ff")
	require.Error(t, err)
	assert.ErrorIs(t, err, explorer.ErrNetwork)

	var netErr *explorer.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadRequest, netErr.StatusCode)
	assert.True(t, strings.Contains(netErr.Error(), "TX decode failed"))
}

func TestGetTransactionHistory(t *testing.T) {
	svc := newTestService(t)

	history, err := svc.GetTransactionHistory(context.Background(), testAddress, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	sent := history[0]
	assert.Equal(t, explorer.Sent, sent.Direction)
	assert.Equal(t, int64(-30200), sent.Amount)
	assert.Equal(t, uint64(200), sent.Fee)
	assert.Equal(t, "pending", sent.Status())

	received := history[1]
	assert.Equal(t, explorer.Received, received.Direction)
	assert.Equal(t, int64(50000), received.Amount)
	assert.Equal(t, int64(11), received.Confirmations)
	assert.Equal(t, "confirmed", received.Status())
	assert.Equal(t, int64(1700000000), received.BlockTime.Unix())
	assert.True(t, strings.HasSuffix(received.ExplorerURL, "/tx/"+txid1))

	limited, err := svc.GetTransactionHistory(context.Background(), testAddress, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, txid2, limited[0].TxID)
}

func TestNetworkError(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetUtxos(context.Background(), "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, explorer.ErrNetwork)

	var netErr *explorer.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
}

func TestFailingNewService(t *testing.T) {
	_, err := esplora.NewService(esplora.ServiceOpts{})
	require.Error(t, err)

	_, err = esplora.NewService(esplora.ServiceOpts{
		APIURL: "http://localhost", RateLimit: -1,
	})
	require.Error(t, err)
}
