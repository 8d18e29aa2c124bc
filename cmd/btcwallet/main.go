package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/bitcoin-wallet/internal/config"
	"github.com/tdex-network/bitcoin-wallet/internal/core/application"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer/esplora"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "the bitcoin network, one of mainnet, testnet, signet or regtest",
	}
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "the directory where the session state and the used addresses are stored",
	}
	passwordFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "the password encrypting the wallet session, prompted if omitted",
	}
	addressTypeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "the address type, one of legacy, segwit or both",
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "btcwallet"
	app.Usage = "Command line interface for a non-custodial bitcoin wallet"
	app.Flags = []cli.Flag{networkFlag, datadirFlag}
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&generate,
		&importkey,
		&load,
		&unload,
		&status,
		&balance,
		&listutxos,
		&fees,
		&history,
		&receive,
		&send,
		&export,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

// initConfig lets global flags override the env before loading the config.
func initConfig(ctx *cli.Context) error {
	overrides := map[string]string{
		config.NetworkKey: ctx.String(networkFlag.Name),
		config.DatadirKey: ctx.String(datadirFlag.Name),
	}
	for key, value := range overrides {
		if value != "" {
			os.Setenv("BTCWALLET_"+key, value)
		}
	}

	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

func getWalletService() (application.WalletService, func(), error) {
	networkCfg := config.GetNetworkConfig()
	explorerSvc, err := esplora.NewService(esplora.ServiceOpts{
		APIURL:         networkCfg.APIURL,
		FeeURL:         networkCfg.FeeURL,
		ExplorerURL:    networkCfg.ExplorerURL,
		RequestTimeout: config.GetExplorerRequestTimeout(),
		RateLimit:      config.GetInt(config.ExplorerRateLimitKey),
	})
	if err != nil {
		return nil, nil, err
	}

	dbType, dbDir := application.DBInMemory, config.GetDbDir()
	if dbDir != "" {
		dbType = application.DBBadger
	}

	appConfig := &application.Config{
		DBType:           dbType,
		DBConfig:         dbDir,
		Network:          networkCfg.Network,
		Datadir:          config.GetDatadir(),
		SessionTimeout:   config.GetDuration(config.SessionTimeoutKey),
		Explorer:         explorerSvc,
		PrivacyEnabled:   config.GetBool(config.PrivacyEnabledKey),
		FallbackFeeRates: networkCfg.FeeLevels,
		FeePriority:      config.GetString(config.FeePriorityKey),
		MaxFeeRate:       config.GetUint64(config.MaxFeeRateKey),
		DustThreshold:    config.GetUint64(config.DustThresholdKey),
		AddressCount:     config.GetInt(config.AddressCountKey),
	}
	if err := appConfig.Validate(); err != nil {
		appConfig.Close()
		return nil, nil, err
	}
	log.Debugf("session state file: %s", config.GetStatePath())

	return appConfig.WalletService(), appConfig.Close, nil
}

// getPassword returns the password flag or prompts for it. With confirm the
// password is asked twice.
func getPassword(ctx *cli.Context, confirm bool) (string, error) {
	if password := ctx.String(passwordFlag.Name); password != "" {
		return password, nil
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if !confirm {
		return password, nil
	}

	again, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != again {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal, use the --%s flag", passwordFlag.Name)
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(password)), nil
}

func getAddressKind(ctx *cli.Context) string {
	if kind := ctx.String(addressTypeFlag.Name); kind != "" {
		return kind
	}
	return string(config.GetAddressKind())
}

func printJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(jsonStr))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[btcwallet] %v\n", err)
	}
	os.Exit(1)
}
