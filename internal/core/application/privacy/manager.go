package privacy

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
	"github.com/tdex-network/bitcoin-wallet/internal/core/ports"
	"github.com/tdex-network/bitcoin-wallet/pkg/mathutil"
)

// DefaultVariancePercent is the default maximum deviation, in percent, that
// PerturbAmount applies to an amount.
const DefaultVariancePercent = 0.1

// Manager owns the set of used addresses and adds noise to amounts and fee
// rates. It is safe for concurrent use.
type Manager struct {
	lock sync.Mutex
	used map[string]struct{}
	repo ports.UsedAddressRepository
	rnd  *rand.Rand
}

// NewManager returns a Manager whose used address set is restored from, and
// mirrored to, the given repository. A nil repo keeps the set in memory.
func NewManager(
	ctx context.Context, repo ports.UsedAddressRepository,
) (*Manager, error) {
	seed, err := randomSeed()
	if err != nil {
		return nil, err
	}
	return newManager(ctx, repo, rand.NewSource(seed))
}

func newManager(
	ctx context.Context, repo ports.UsedAddressRepository, src rand.Source,
) (*Manager, error) {
	used := make(map[string]struct{})
	if repo != nil {
		addresses, err := repo.GetUsedAddresses(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
		}
		for _, addr := range addresses {
			used[addr] = struct{}{}
		}
	}
	return &Manager{used: used, repo: repo, rnd: rand.New(src)}, nil
}

// MarkUsed adds the given addresses to the used set.
func (m *Manager) MarkUsed(ctx context.Context, addresses ...string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.markUsed(ctx, addresses...)
}

// IsUsed returns whether the address has already been handed out.
func (m *Manager) IsUsed(address string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	_, ok := m.used[address]
	return ok
}

// NextUnused returns the first of the given addresses that is not used yet
// and marks it used in the same critical section, so that concurrent callers
// never get the same address.
func (m *Manager) NextUnused(
	ctx context.Context, addresses []string,
) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, addr := range addresses {
		if _, ok := m.used[addr]; ok {
			continue
		}
		if err := m.markUsed(ctx, addr); err != nil {
			return "", err
		}
		return addr, nil
	}
	return "", domain.ErrNoUnusedAddress
}

// PerturbAmount returns the given BTC amount shifted by a uniformly random
// number of satoshis within ±variancePercent of it. Zero is returned as is.
func (m *Manager) PerturbAmount(
	amount decimal.Decimal, variancePercent float64,
) decimal.Decimal {
	if amount.IsZero() {
		return amount
	}

	sats := mathutil.ToSatoshi(amount)
	maxVariance := int64(float64(sats) * variancePercent / 100)
	if maxVariance < 0 {
		maxVariance = -maxVariance
	}
	if maxVariance == 0 {
		return amount
	}

	m.lock.Lock()
	offset := m.rnd.Int63n(2*maxVariance+1) - maxVariance
	m.lock.Unlock()

	return mathutil.ToBitcoin(sats + offset)
}

// PerturbFeeRate returns the given rate shifted by -1, 0 or +1 sat/vB, never
// going below 1 sat/vB.
func (m *Manager) PerturbFeeRate(rate uint64) uint64 {
	m.lock.Lock()
	offset := m.rnd.Int63n(3) - 1
	m.lock.Unlock()

	perturbed := int64(rate) + offset
	if perturbed < 1 {
		return 1
	}
	return uint64(perturbed)
}

func (m *Manager) markUsed(ctx context.Context, addresses ...string) error {
	fresh := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if _, ok := m.used[addr]; ok {
			continue
		}
		m.used[addr] = struct{}{}
		fresh = append(fresh, addr)
	}
	if m.repo == nil || len(fresh) == 0 {
		return nil
	}

	if err := m.repo.AddUsedAddresses(ctx, fresh...); err != nil {
		log.WithError(err).Warn("failed to persist used addresses")
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return nil
}

func randomSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to seed random source: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
