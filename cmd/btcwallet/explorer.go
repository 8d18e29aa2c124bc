package main

import (
	"context"
	"fmt"

	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"github.com/tdex-network/bitcoin-wallet/pkg/mathutil"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the balance of the loaded wallet",
	Flags: []cli.Flag{
		addressTypeFlag,
	},
	Action: balanceAction,
}

var listutxos = cli.Command{
	Name:  "utxos",
	Usage: "get a list of all utxos of the loaded wallet",
	Flags: []cli.Flag{
		addressTypeFlag,
	},
	Action: listUtxosAction,
}

var fees = cli.Command{
	Name:   "fees",
	Usage:  "get the recommended fee rates in sat/vB",
	Action: feesAction,
}

var history = cli.Command{
	Name:  "history",
	Usage: "get the latest transactions of the loaded wallet",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "the max number of transactions to list",
			Value: 10,
		},
	},
	Action: historyAction,
}

func balanceAction(ctx *cli.Context) error {
	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := walletSvc.Balance(
		context.Background(), wallet.AddressKind(ctx.String(addressTypeFlag.Name)),
	)
	if err != nil {
		return err
	}

	type addressBalance struct {
		Address     string `json:"address"`
		Confirmed   string `json:"confirmed"`
		Unconfirmed string `json:"unconfirmed"`
		TxCount     int    `json:"tx_count"`
	}
	addresses := make([]addressBalance, 0, len(resp.Addresses))
	for _, b := range resp.Addresses {
		addresses = append(addresses, addressBalance{
			Address:     b.Address,
			Confirmed:   mathutil.FormatBitcoin(b.Confirmed),
			Unconfirmed: mathutil.FormatBitcoin(b.Unconfirmed),
			TxCount:     b.TxCount,
		})
	}

	printJSON(map[string]interface{}{
		"addresses":   addresses,
		"confirmed":   mathutil.FormatBitcoin(resp.Confirmed),
		"unconfirmed": mathutil.FormatBitcoin(resp.Unconfirmed),
		"total":       mathutil.FormatBitcoin(resp.Total()),
		"tx_count":    resp.TxCount,
	})
	return nil
}

func listUtxosAction(ctx *cli.Context) error {
	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	utxos, err := walletSvc.ListUtxos(
		context.Background(), wallet.AddressKind(ctx.String(addressTypeFlag.Name)),
	)
	if err != nil {
		return err
	}

	printJSON(utxos)
	return nil
}

func feesAction(ctx *cli.Context) error {
	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	rates, err := walletSvc.FeeRates(context.Background())
	if err != nil {
		return err
	}

	printJSON(rates)
	return nil
}

func historyAction(ctx *cli.Context) error {
	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	txs, err := walletSvc.History(context.Background(), ctx.Int("limit"))
	if err != nil {
		return err
	}

	type txInfo struct {
		explorer.TxSummary
		Status string `json:"status"`
		Amount string `json:"amount"`
	}
	list := make([]txInfo, 0, len(txs))
	for _, tx := range txs {
		list = append(list, txInfo{
			TxSummary: tx,
			Status:    tx.Status(),
			Amount:    mathutil.FormatBitcoin(tx.Amount),
		})
	}

	if len(list) <= 0 {
		fmt.Println("No transactions found")
		return nil
	}
	printJSON(list)
	return nil
}
