package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/bitcoin-wallet/internal/core/application"
	"github.com/tdex-network/bitcoin-wallet/pkg/mathutil"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var receive = cli.Command{
	Name:  "receive",
	Usage: "get an address and a payment request to receive funds",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "new",
			Usage: "use an address never handed out before",
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the requested amount in BTC",
		},
		&cli.StringFlag{
			Name:  "message",
			Usage: "the message of the payment request",
		},
	},
	Action: receiveAction,
}

var send = cli.Command{
	Name:  "send",
	Usage: "send funds from the loaded wallet",
	Flags: []cli.Flag{
		passwordFlag,
		addressTypeFlag,
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the address of the receiver",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to send in BTC",
			Required: true,
		},
		&cli.Uint64Flag{
			Name:  "fee_rate",
			Usage: "the fee rate in sat/vB, the recommended one is used if omitted",
		},
		&cli.StringFlag{
			Name:  "priority",
			Usage: "the priority of the recommended fee rate, one of high, medium or low",
		},
	},
	Action: sendAction,
}

func receiveAction(ctx *cli.Context) error {
	var amount *decimal.Decimal
	if amountStr := ctx.String("amount"); amountStr != "" {
		sats, err := mathutil.ParseBitcoin(amountStr)
		if err != nil {
			return err
		}
		btc := mathutil.ToBitcoin(int64(sats))
		amount = &btc
	}

	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := walletSvc.Receive(
		context.Background(), application.ReceiveRequest{
			NewAddress: ctx.Bool("new"),
			Amount:     amount,
			Message:    ctx.String("message"),
		},
	)
	if err != nil {
		return err
	}

	printJSON(map[string]string{
		"address": req.Address,
		"uri":     req.URI,
	})
	return nil
}

func sendAction(ctx *cli.Context) error {
	if ctx.IsSet("fee_rate") && ctx.IsSet("priority") {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	amount, err := mathutil.ParseBitcoin(ctx.String("amount"))
	if err != nil {
		return err
	}
	password, err := getPassword(ctx, false)
	if err != nil {
		return err
	}

	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := walletSvc.Send(context.Background(), application.SendRequest{
		ToAddress:   ctx.String("to"),
		Amount:      amount,
		FeeRate:     ctx.Uint64("fee_rate"),
		FeePriority: ctx.String("priority"),
		AddressKind: wallet.AddressKind(ctx.String(addressTypeFlag.Name)),
		Password:    password,
	})
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"txid":           res.TxID,
		"from":           res.FromAddress,
		"to":             res.ToAddress,
		"amount":         mathutil.FormatBitcoin(int64(res.Amount)),
		"fee":            mathutil.FormatBitcoin(int64(res.Fee)),
		"fee_rate":       res.FeeRate,
		"change":         mathutil.FormatBitcoin(int64(res.Change)),
		"change_address": res.ChangeAddress,
		"inputs":         res.NumInputs,
	})
	return nil
}

func timeNow() time.Time {
	return time.Now()
}
