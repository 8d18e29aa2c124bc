package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/bitcoin-wallet/internal/core/domain"
	"github.com/tdex-network/bitcoin-wallet/internal/core/ports"
)

const (
	// StateFilename is the name of the session file in the datadir
	StateFilename = "wallet_state.json"

	filePerm = 0600
	dirPerm  = 0700
)

var (
	// ErrNullDatadir ...
	ErrNullDatadir = errors.New("datadir must not be null")
)

// StoreOpts is the struct given to NewStateStore.
type StoreOpts struct {
	Datadir string
	// Timeout is the session inactivity timeout, DefaultSessionTimeout if zero
	Timeout time.Duration
	// AllowPlaintext makes unencrypted states be written to disk. Otherwise
	// they only live in the memory of the process that saved them
	AllowPlaintext bool
	// Now is the clock of the store, time.Now if nil
	Now func() time.Time
}

func (o StoreOpts) validate() error {
	if o.Datadir == "" {
		return ErrNullDatadir
	}
	if o.Timeout < 0 {
		return fmt.Errorf("session timeout must not be negative")
	}
	return nil
}

type stateStore struct {
	lock           sync.Mutex
	path           string
	timeout        time.Duration
	allowPlaintext bool
	now            func() time.Time

	inMemoryState *domain.WalletState
}

// NewStateStore returns a wallet state store persisting the active wallet
// to StateFilename in the given datadir.
func NewStateStore(opts StoreOpts) (ports.WalletStateStore, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Datadir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = domain.DefaultSessionTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &stateStore{
		path:           filepath.Join(opts.Datadir, StateFilename),
		timeout:        timeout,
		allowPlaintext: opts.AllowPlaintext,
		now:            now,
	}, nil
}

func (s *stateStore) Save(
	_ context.Context, args domain.NewWalletStateArgs,
) (*domain.WalletState, error) {
	args.Now = s.now()
	state, err := domain.NewWalletState(args)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if !state.Encrypted && !s.allowPlaintext {
		if err := s.removeFile(); err != nil {
			return nil, err
		}
		s.inMemoryState = state
		log.Debug("wallet state kept in memory")
		return copyState(state), nil
	}

	s.inMemoryState = nil
	if err := s.writeFile(state); err != nil {
		return nil, err
	}
	log.Debugf("wallet state saved to %s", s.path)
	return copyState(state), nil
}

func (s *stateStore) Load(_ context.Context) (*domain.WalletState, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := s.touch(state); err != nil {
		log.WithError(err).Warn("failed to refresh wallet state timestamp")
	}
	return copyState(state), nil
}

func (s *stateStore) Unload(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.inMemoryState = nil
	return s.removeFile()
}

func (s *stateStore) IsLoaded(_ context.Context) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.load()
	return err == nil
}

func (s *stateStore) Touch(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	return s.touch(state)
}

func (s *stateStore) UpdateAddresses(
	_ context.Context, addresses []domain.AddressSummary,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state.Addresses = append([]domain.AddressSummary{}, addresses...)
	return s.touch(state)
}

// load returns the active state, discarding it if the session expired or it
// can't be read. The expiry check never needs the password.
func (s *stateStore) load() (*domain.WalletState, error) {
	if s.inMemoryState != nil {
		if s.inMemoryState.IsExpired(s.now(), s.timeout) {
			log.Info("wallet session expired")
			s.inMemoryState = nil
			return nil, domain.ErrNoActiveWallet
		}
		return s.inMemoryState, nil
	}

	buf, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("failed to read wallet state")
		}
		return nil, domain.ErrNoActiveWallet
	}

	state := &domain.WalletState{}
	if err := json.Unmarshal(buf, state); err != nil {
		log.WithError(err).Warn("discarding malformed wallet state")
		s.discard()
		return nil, domain.ErrNoActiveWallet
	}
	if err := state.Validate(); err != nil {
		log.WithError(err).Warn("discarding invalid wallet state")
		s.discard()
		return nil, domain.ErrNoActiveWallet
	}
	if !state.Encrypted && !s.allowPlaintext {
		log.Warn("discarding wallet state with plaintext private key")
		s.discard()
		return nil, domain.ErrNoActiveWallet
	}
	if state.IsExpired(s.now(), s.timeout) {
		log.Info("wallet session expired")
		s.discard()
		return nil, domain.ErrNoActiveWallet
	}
	return state, nil
}

func (s *stateStore) touch(state *domain.WalletState) error {
	state.Touch(s.now())
	if state == s.inMemoryState {
		return nil
	}
	return s.writeFile(state)
}

// writeFile replaces the state file with a temp file renamed over it, so
// that a crash never leaves a partially written state.
func (s *stateStore) writeFile(state *domain.WalletState) error {
	buf, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, "."+StateFilename+"-*")
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	tmpPath := f.Name()

	if err := writeAndClose(f, buf); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return nil
}

func (s *stateStore) removeFile() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return nil
}

func (s *stateStore) discard() {
	if err := s.removeFile(); err != nil {
		log.WithError(err).Warn("failed to remove wallet state")
	}
}

func writeAndClose(f *os.File, buf []byte) error {
	if err := f.Chmod(filePerm); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func copyState(state *domain.WalletState) *domain.WalletState {
	cp := *state
	cp.Addresses = append([]domain.AddressSummary{}, state.Addresses...)
	return &cp
}
