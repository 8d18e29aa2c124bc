package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tdex-network/bitcoin-wallet/internal/core/application"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var generate = cli.Command{
	Name:  "generate",
	Usage: "generate a new HD wallet, or restore one from mnemonic, and load it",
	Flags: []cli.Flag{
		addressTypeFlag,
		passwordFlag,
		&cli.IntFlag{
			Name:  "count",
			Usage: "the number of addresses to derive per type",
		},
		&cli.StringFlag{
			Name:  "mnemonic",
			Usage: "the space separated mnemonic of the wallet to restore",
		},
		&cli.StringFlag{
			Name:  "export",
			Usage: "write a plaintext backup of the wallet to the given path",
		},
	},
	Action: generateAction,
}

var importkey = cli.Command{
	Name:  "import",
	Usage: "import a WIF private key and load it",
	Flags: []cli.Flag{
		addressTypeFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:     "key",
			Usage:    "the WIF private key to import",
			Required: true,
		},
	},
	Action: importAction,
}

var load = cli.Command{
	Name:  "load",
	Usage: "load a wallet from an export file",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:     "file",
			Usage:    "the path of the export file",
			Required: true,
		},
	},
	Action: loadAction,
}

var unload = cli.Command{
	Name:   "unload",
	Usage:  "discard the loaded wallet",
	Action: unloadAction,
}

var status = cli.Command{
	Name:   "status",
	Usage:  "show the loaded wallet",
	Action: statusAction,
}

var export = cli.Command{
	Name:  "export",
	Usage: "write a plaintext backup of the loaded wallet key",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:     "file",
			Usage:    "the path of the export file",
			Required: true,
		},
	},
	Action: exportAction,
}

func generateAction(ctx *cli.Context) error {
	password, err := getPassword(ctx, true)
	if err != nil {
		return err
	}

	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	material, err := walletSvc.GenerateWallet(
		context.Background(), application.GenerateWalletRequest{
			Mnemonic:    strings.Fields(ctx.String("mnemonic")),
			AddressKind: wallet.AddressKind(getAddressKind(ctx)),
			Count:       ctx.Int("count"),
			Password:    password,
		},
	)
	if err != nil {
		return err
	}

	if path := ctx.String("export"); path != "" {
		if err := writeExport(material, path); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println("Write down your mnemonic and keep it safe:")
	fmt.Println(material.Mnemonic)
	fmt.Println()
	printAddresses(material.Addresses)
	return nil
}

func importAction(ctx *cli.Context) error {
	password, err := getPassword(ctx, true)
	if err != nil {
		return err
	}

	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	material, err := walletSvc.ImportWallet(
		context.Background(), application.ImportWalletRequest{
			PrivateKey:  ctx.String("key"),
			AddressKind: wallet.AddressKind(getAddressKind(ctx)),
			Password:    password,
		},
	)
	if err != nil {
		return err
	}

	fmt.Println()
	printAddresses(material.Addresses)
	return nil
}

func loadAction(ctx *cli.Context) error {
	password, err := getPassword(ctx, true)
	if err != nil {
		return err
	}

	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := walletSvc.LoadFromExport(
		context.Background(), ctx.String("file"), password,
	)
	if err != nil {
		return err
	}

	printJSON(info)
	return nil
}

func unloadAction(ctx *cli.Context) error {
	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := walletSvc.Unload(context.Background()); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Wallet is unloaded")
	return nil
}

func statusAction(ctx *cli.Context) error {
	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := walletSvc.Status(context.Background())
	if err != nil {
		return err
	}

	printJSON(info)
	return nil
}

func exportAction(ctx *cli.Context) error {
	password, err := getPassword(ctx, false)
	if err != nil {
		return err
	}

	walletSvc, cleanup, err := getWalletService()
	if err != nil {
		return err
	}
	defer cleanup()

	walletExport, err := walletSvc.Export(context.Background(), password)
	if err != nil {
		return err
	}
	path := ctx.String("file")
	if err := application.SaveExport(path, walletExport); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Wallet exported to %s, keep it safe\n", path)
	return nil
}

func writeExport(material *wallet.WalletMaterial, path string) error {
	walletExport, err := wallet.NewWalletExport(material, timeNow())
	if err != nil {
		return err
	}
	return application.SaveExport(path, walletExport)
}

type addressInfo struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Address string `json:"address"`
}

// printAddresses never prints private keys.
func printAddresses(addresses []wallet.Address) {
	list := make([]addressInfo, 0, len(addresses))
	for _, a := range addresses {
		list = append(list, addressInfo{
			Index: a.Index, Type: string(a.Kind), Path: a.Path, Address: a.Address,
		})
	}
	printJSON(list)
}
