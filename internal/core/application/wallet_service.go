package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/bitcoin-wallet/internal/core/application/privacy"
	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
	"github.com/tdex-network/bitcoin-wallet/internal/core/ports"
	"github.com/tdex-network/bitcoin-wallet/pkg/explorer"
	"github.com/tdex-network/bitcoin-wallet/pkg/mathutil"
	"github.com/tdex-network/bitcoin-wallet/pkg/wallet"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxFeeRate is the fee rate cap in sat/vB
	DefaultMaxFeeRate = 100
	// DefaultHistoryLimit is the max number of txs returned by History
	DefaultHistoryLimit = 10

	exportFilePerm = 0600
)

// WalletService is the entry point for every wallet operation. It keeps the
// active wallet in a WalletStateStore and talks to the blockchain through an
// Explorer.
type WalletService interface {
	GenerateWallet(
		ctx context.Context, req GenerateWalletRequest,
	) (*wallet.WalletMaterial, error)
	ImportWallet(
		ctx context.Context, req ImportWalletRequest,
	) (*wallet.WalletMaterial, error)
	LoadFromExport(
		ctx context.Context, path, password string,
	) (*WalletInfo, error)
	Unload(ctx context.Context) error
	Status(ctx context.Context) (*WalletInfo, error)
	Balance(
		ctx context.Context, kind wallet.AddressKind,
	) (*WalletBalance, error)
	ListUtxos(
		ctx context.Context, kind wallet.AddressKind,
	) ([]explorer.Utxo, error)
	FeeRates(ctx context.Context) (*explorer.FeeRates, error)
	History(ctx context.Context, limit int) ([]explorer.TxSummary, error)
	Receive(ctx context.Context, req ReceiveRequest) (*PaymentRequest, error)
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
	Export(ctx context.Context, password string) (*wallet.WalletExport, error)
}

// WalletServiceOpts is the struct given to NewWalletService.
type WalletServiceOpts struct {
	Network    string
	Explorer   ports.Explorer
	StateStore ports.WalletStateStore
	Privacy    *privacy.Manager
	// PrivacyEnabled turns on change address rotation and amount and fee
	// rate randomization when sending
	PrivacyEnabled bool
	// FallbackFeeRates are used when the explorer can't recommend fee rates
	FallbackFeeRates explorer.FeeRates
	FeePriority      string
	MaxFeeRate       uint64
	DustThreshold    uint64
	AddressCount     int
	Now              func() time.Time
}

func (o WalletServiceOpts) validate() error {
	if !wallet.IsValidNetwork(o.Network) {
		return fmt.Errorf("%w: %s", wallet.ErrUnknownNetwork, o.Network)
	}
	if o.Explorer == nil {
		return ErrNullExplorer
	}
	if o.StateStore == nil {
		return ErrNullStateStore
	}
	if o.Privacy == nil {
		return ErrNullPrivacyManager
	}
	if _, err := (explorer.FeeRates{}).ForPriority(o.FeePriority); err != nil {
		return err
	}
	if o.AddressCount < 0 {
		return wallet.ErrInvalidAddressCount
	}
	return nil
}

type walletService struct {
	network          string
	explorer         ports.Explorer
	store            ports.WalletStateStore
	privacy          *privacy.Manager
	privacyEnabled   bool
	fallbackFeeRates explorer.FeeRates
	feePriority      string
	maxFeeRate       uint64
	dustThreshold    uint64
	addressCount     int
	now              func() time.Time
}

// NewWalletService returns a WalletService for the given network.
func NewWalletService(opts WalletServiceOpts) (WalletService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	maxFeeRate := opts.MaxFeeRate
	if maxFeeRate == 0 {
		maxFeeRate = DefaultMaxFeeRate
	}
	dustThreshold := opts.DustThreshold
	if dustThreshold == 0 {
		dustThreshold = wallet.DefaultDustThreshold
	}
	addressCount := opts.AddressCount
	if addressCount == 0 {
		addressCount = wallet.DefaultAddressCount
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &walletService{
		network:          opts.Network,
		explorer:         opts.Explorer,
		store:            opts.StateStore,
		privacy:          opts.Privacy,
		privacyEnabled:   opts.PrivacyEnabled,
		fallbackFeeRates: opts.FallbackFeeRates,
		feePriority:      opts.FeePriority,
		maxFeeRate:       maxFeeRate,
		dustThreshold:    dustThreshold,
		addressCount:     addressCount,
		now:              now,
	}, nil
}

func (w *walletService) GenerateWallet(
	ctx context.Context, req GenerateWalletRequest,
) (*wallet.WalletMaterial, error) {
	count := req.Count
	if count == 0 {
		count = w.addressCount
	}

	material, err := wallet.GenerateWallet(wallet.GenerateWalletOpts{
		Mnemonic:    req.Mnemonic,
		Network:     w.network,
		AddressKind: req.AddressKind,
		Count:       count,
	})
	if err != nil {
		return nil, err
	}

	if err := w.activate(ctx, material, req.Password); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"network":   material.Network,
		"kind":      material.AddressKind,
		"addresses": len(material.Addresses),
	}).Info("generated new wallet")
	return material, nil
}

func (w *walletService) ImportWallet(
	ctx context.Context, req ImportWalletRequest,
) (*wallet.WalletMaterial, error) {
	if req.PrivateKey == "" {
		return nil, domain.ErrNullPrivateKey
	}

	material, err := wallet.GenerateWallet(wallet.GenerateWalletOpts{
		PrivateKey:  req.PrivateKey,
		Network:     w.network,
		AddressKind: req.AddressKind,
	})
	if err != nil {
		return nil, err
	}

	if err := w.activate(ctx, material, req.Password); err != nil {
		return nil, err
	}

	log.WithField("kind", material.AddressKind).Info("imported private key")
	return material, nil
}

func (w *walletService) LoadFromExport(
	ctx context.Context, path, password string,
) (*WalletInfo, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	export, err := wallet.ParseWalletExport(buf)
	if err != nil {
		return nil, err
	}
	if export.Network != w.network {
		return nil, fmt.Errorf(
			"%w: export is for %s, wallet is configured for %s",
			ErrNetworkMismatch, export.Network, w.network,
		)
	}

	addresses := make([]domain.AddressSummary, 0, len(export.Addresses))
	for _, a := range export.Addresses {
		addresses = append(addresses, domain.AddressSummary{
			Index: a.Index, Address: a.Address,
		})
	}

	state, err := w.store.Save(ctx, domain.NewWalletStateArgs{
		PrivateKey:  export.PrivateKey,
		PublicKey:   export.PublicKey,
		Network:     export.Network,
		AddressType: wallet.Both,
		Addresses:   addresses,
		Password:    password,
		Encrypt:     password != "",
	})
	if err != nil {
		return nil, err
	}

	log.WithField("addresses", len(addresses)).Info("loaded wallet from export")
	return walletInfoFromState(state), nil
}

func (w *walletService) Unload(ctx context.Context) error {
	if err := w.store.Unload(ctx); err != nil {
		return err
	}
	log.Info("wallet unloaded")
	return nil
}

func (w *walletService) Status(ctx context.Context) (*WalletInfo, error) {
	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return walletInfoFromState(state), nil
}

func (w *walletService) Balance(
	ctx context.Context, kind wallet.AddressKind,
) (*WalletBalance, error) {
	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	addresses, err := addressesOfKind(state, kind)
	if err != nil {
		return nil, err
	}

	balances := make([]explorer.Balance, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			balance, err := w.explorer.GetBalance(gctx, addr)
			if err != nil {
				return err
			}
			balance.Address = addr
			balances[i] = *balance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &WalletBalance{Addresses: balances}
	for _, b := range balances {
		res.Confirmed += b.Confirmed
		res.Unconfirmed += b.Unconfirmed
		res.TxCount += b.TxCount
	}
	return res, nil
}

func (w *walletService) ListUtxos(
	ctx context.Context, kind wallet.AddressKind,
) ([]explorer.Utxo, error) {
	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	addresses, err := addressesOfKind(state, kind)
	if err != nil {
		return nil, err
	}

	utxosByAddress := make([][]explorer.Utxo, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			utxos, err := w.explorer.GetUtxos(gctx, addr)
			if err != nil {
				return err
			}
			for j := range utxos {
				utxos[j].Address = addr
			}
			utxosByAddress[i] = utxos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	utxos := make([]explorer.Utxo, 0)
	for _, list := range utxosByAddress {
		utxos = append(utxos, list...)
	}
	sort.SliceStable(utxos, func(i, j int) bool {
		return utxos[i].Value > utxos[j].Value
	})
	return utxos, nil
}

func (w *walletService) FeeRates(ctx context.Context) (*explorer.FeeRates, error) {
	rates, err := w.explorer.GetRecommendedFeeRates(ctx)
	if err != nil {
		log.WithError(err).Warn(
			"failed to fetch recommended fee rates, using fallback levels",
		)
		fallback := w.fallbackFeeRates
		rates = &fallback
	}

	return &explorer.FeeRates{
		High:   w.capFeeRate(rates.High),
		Medium: w.capFeeRate(rates.Medium),
		Low:    w.capFeeRate(rates.Low),
	}, nil
}

func (w *walletService) History(
	ctx context.Context, limit int,
) ([]explorer.TxSummary, error) {
	if limit < 0 {
		return nil, ErrInvalidHistoryLimit
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	addresses := state.AddressList()

	historyByAddress := make([][]explorer.TxSummary, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			history, err := w.explorer.GetTransactionHistory(gctx, addr, limit)
			if err != nil {
				return err
			}
			historyByAddress[i] = history
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	history := make([]explorer.TxSummary, 0)
	for _, list := range historyByAddress {
		history = append(history, list...)
	}
	sortHistory(history)

	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (w *walletService) Receive(
	ctx context.Context, req ReceiveRequest,
) (*PaymentRequest, error) {
	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	addresses := state.AddressList()
	if len(addresses) <= 0 {
		return nil, domain.ErrNoUnusedAddress
	}

	address := addresses[0]
	if req.NewAddress {
		address, err = w.privacy.NextUnused(ctx, addresses)
		if err != nil {
			return nil, err
		}
	}

	uri, err := wallet.PaymentRequestURI(wallet.PaymentRequestOpts{
		Address: address,
		Amount:  req.Amount,
		Message: req.Message,
		Network: state.Network,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentRequest{Address: address, URI: uri}, nil
}

// Send pays the requested amount spending the utxos of the address
// controlled by the active key. With privacy enabled the amount is slightly
// randomized, the change goes to an unused wallet address and the fee rate
// is jittered by ±1 sat/vB once the inputs have been selected, falling back
// to the original rate if the selected inputs can't cover the higher fee.
func (w *walletService) Send(
	ctx context.Context, req SendRequest,
) (*SendResult, error) {
	if req.Amount == 0 {
		return nil, ErrZeroAmount
	}

	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	params, err := wallet.NetworkParams(state.Network)
	if err != nil {
		return nil, err
	}
	if _, err := wallet.DecodeAddress(req.ToAddress, params); err != nil {
		return nil, err
	}

	privateKey, err := state.RevealPrivateKey(req.Password)
	if err != nil {
		return nil, err
	}
	fromAddress, fromKind, err := spendableAddress(
		state, privateKey, req.AddressKind,
	)
	if err != nil {
		return nil, err
	}

	feeRate, err := w.sendFeeRate(ctx, req)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if w.privacyEnabled {
		perturbed := mathutil.ToSatoshi(w.privacy.PerturbAmount(
			mathutil.ToBitcoin(int64(amount)), privacy.DefaultVariancePercent,
		))
		if perturbed > 0 {
			amount = uint64(perturbed)
		}
	}

	utxos, err := w.explorer.GetUtxos(ctx, fromAddress)
	if err != nil {
		return nil, err
	}
	scriptType := fromKind.ScriptType()
	selection, err := wallet.SelectUtxos(wallet.SelectUtxosOpts{
		Utxos:        utxos,
		TargetAmount: amount,
		FeeRate:      feeRate,
		ScriptType:   scriptType,
	})
	if err != nil {
		return nil, err
	}

	fee := selection.Fee.Fee
	changeAddress := fromAddress
	if w.privacyEnabled {
		jitteredRate := w.privacy.PerturbFeeRate(feeRate)
		jitteredFee := wallet.EstimateFee(
			len(selection.Utxos), 2, scriptType, jitteredRate,
		)
		if selection.Total() >= amount+jitteredFee.Fee {
			feeRate, fee = jitteredRate, jitteredFee.Fee
		}

		changeAddress, err = w.changeAddress(ctx, state, fromAddress)
		if err != nil {
			return nil, err
		}
	}

	result, err := wallet.BuildTransaction(wallet.BuildTxOpts{
		FromAddress:    fromAddress,
		FromPrivateKey: privateKey,
		ToAddress:      req.ToAddress,
		Amount:         amount,
		Utxos:          selection.Utxos,
		Fee:            fee,
		ChangeAddress:  changeAddress,
		DustThreshold:  w.dustThreshold,
		Network:        state.Network,
	})
	if err != nil {
		return nil, err
	}

	txid, err := w.explorer.Broadcast(ctx, result.TxHex)
	if err != nil {
		return nil, err
	}
	if txid != result.TxID {
		log.Warnf("explorer returned txid %s for tx %s", txid, result.TxID)
	}

	if err := w.store.Touch(ctx); err != nil {
		log.WithError(err).Warn("failed to refresh wallet session")
	}

	log.WithFields(log.Fields{
		"txid":     result.TxID,
		"amount":   amount,
		"fee":      result.Fee,
		"fee_rate": feeRate,
		"inputs":   len(selection.Utxos),
	}).Info("transaction broadcasted")

	return &SendResult{
		TxID:          result.TxID,
		TxHex:         result.TxHex,
		FromAddress:   fromAddress,
		ToAddress:     req.ToAddress,
		Amount:        amount,
		Fee:           result.Fee,
		FeeRate:       feeRate,
		Change:        result.Change,
		ChangeAddress: result.ChangeAddress,
		NumInputs:     len(selection.Utxos),
	}, nil
}

func (w *walletService) Export(
	ctx context.Context, password string,
) (*wallet.WalletExport, error) {
	state, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	privateKey, err := state.RevealPrivateKey(password)
	if err != nil {
		return nil, err
	}

	material, err := wallet.GenerateWallet(wallet.GenerateWalletOpts{
		PrivateKey:  privateKey,
		Network:     state.Network,
		AddressKind: state.Kind(),
	})
	if err != nil {
		return nil, err
	}
	return wallet.NewWalletExport(material, w.now())
}

// SaveExport writes the given export to path, readable by the owner only.
func SaveExport(path string, export *wallet.WalletExport) error {
	buf, err := export.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, exportFilePerm); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return os.Chmod(path, exportFilePerm)
}

func (w *walletService) activate(
	ctx context.Context, material *wallet.WalletMaterial, password string,
) error {
	_, err := w.store.Save(ctx, domain.NewWalletStateArgs{
		PrivateKey:  material.PrivateKey,
		PublicKey:   material.PublicKey,
		Network:     material.Network,
		AddressType: material.AddressKind,
		Addresses:   domain.AddressSummaries(material.Addresses),
		Password:    password,
		Encrypt:     password != "",
	})
	return err
}

func (w *walletService) sendFeeRate(
	ctx context.Context, req SendRequest,
) (uint64, error) {
	if req.FeeRate > 0 {
		if req.FeeRate > w.maxFeeRate {
			return 0, fmt.Errorf(
				"%w: %d sat/vB, max %d sat/vB",
				ErrFeeRateTooHigh, req.FeeRate, w.maxFeeRate,
			)
		}
		return req.FeeRate, nil
	}

	priority := req.FeePriority
	if priority == "" {
		priority = w.feePriority
	}
	rates, err := w.FeeRates(ctx)
	if err != nil {
		return 0, err
	}
	return rates.ForPriority(priority)
}

func (w *walletService) changeAddress(
	ctx context.Context, state *domain.WalletState, fromAddress string,
) (string, error) {
	candidates := make([]string, 0, len(state.Addresses))
	for _, addr := range state.AddressList() {
		if addr != fromAddress {
			candidates = append(candidates, addr)
		}
	}

	addr, err := w.privacy.NextUnused(ctx, candidates)
	if err != nil {
		if errors.Is(err, domain.ErrNoUnusedAddress) {
			log.Warn("no unused change address left, sending change back")
			return fromAddress, nil
		}
		return "", err
	}
	return addr, nil
}

func (w *walletService) capFeeRate(rate uint64) uint64 {
	if rate < 1 {
		return 1
	}
	if rate > w.maxFeeRate {
		return w.maxFeeRate
	}
	return rate
}

// spendableAddress returns the first wallet address, of the requested kind
// if any, that is controlled by the given private key.
func spendableAddress(
	state *domain.WalletState, privateKey string, kind wallet.AddressKind,
) (string, wallet.AddressKind, error) {
	params, err := wallet.NetworkParams(state.Network)
	if err != nil {
		return "", "", err
	}
	keyPair, err := wallet.ParseWIF(privateKey, params)
	if err != nil {
		return "", "", err
	}

	if kind == "" {
		kind = state.Kind()
	}
	owned := make(map[string]wallet.AddressKind)
	for _, k := range kind.Kinds() {
		addr, err := wallet.EncodeAddress(keyPair.PublicKey, k, params)
		if err != nil {
			return "", "", err
		}
		owned[addr] = k
	}

	for _, addr := range state.AddressList() {
		if k, ok := owned[addr]; ok {
			return addr, k, nil
		}
	}
	return "", "", ErrNoSpendableAddress
}

func addressesOfKind(
	state *domain.WalletState, kind wallet.AddressKind,
) ([]string, error) {
	if kind == "" {
		return state.AddressList(), nil
	}
	if _, err := wallet.ParseAddressKind(string(kind)); err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(state.Addresses))
	for _, k := range kind.Kinds() {
		addresses = append(addresses, state.AddressesOfKind(k)...)
	}
	return addresses, nil
}

// sortHistory orders txs newest first: unconfirmed ones, then confirmed by
// descending block height.
func sortHistory(history []explorer.TxSummary) {
	sort.SliceStable(history, func(i, j int) bool {
		a, b := history[i], history[j]
		if a.Confirmed != b.Confirmed {
			return !a.Confirmed
		}
		if a.BlockHeight != b.BlockHeight {
			return a.BlockHeight > b.BlockHeight
		}
		return a.TxID < b.TxID
	})
}

func walletInfoFromState(state *domain.WalletState) *WalletInfo {
	return &WalletInfo{
		Network:     state.Network,
		AddressType: state.Kind(),
		Encrypted:   state.Encrypted,
		PublicKey:   state.PublicKey,
		Addresses:   append([]domain.AddressSummary{}, state.Addresses...),
		LastAccess:  time.Unix(state.Timestamp, 0),
	}
}
