// Package session owns the guest credential state machine and the wallet
// session, and publishes their state to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/metrics"
	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/internal/store"
)

var (
	ErrNotLoaded         = errors.New("session not loaded")
	ErrBusy              = errors.New("another operation is in progress")
	ErrNoCredential      = errors.New("no guest credential")
	ErrSessionConflict   = errors.New("a different session is already active")
	ErrCorruptCredential = errors.New("stored credential is corrupt")
)

// Issuer is the part of the issuer client the manager needs.
type Issuer interface {
	RegisterKey(ctx context.Context, publicKey string) error
	VerifyKey(ctx context.Context, kp *keys.KeyPair) error
	RevokeAll(ctx context.Context) error
}

// Option customises a Manager.
type Option func(*Manager)

// WithKeyGenerator replaces mnemonic key generation.
func WithKeyGenerator(gen func() (*keys.KeyPair, error)) Option {
	return func(m *Manager) { m.generate = gen }
}

// WithClock overrides the clock used for verifiedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithReverifyAfter makes SignIn re-verify a credential whose last successful
// verification is older than d. Zero disables re-verification.
func WithReverifyAfter(d time.Duration) Option {
	return func(m *Manager) { m.reverifyAfter = d }
}

// Manager is the only writer of the guest credential.
type Manager struct {
	store         store.Store
	issuer        Issuer
	generate      func() (*keys.KeyPair, error)
	now           func() time.Time
	reverifyAfter time.Duration

	busy atomic.Bool

	mu     sync.Mutex
	state  State
	cred   *model.Credential
	wallet *model.WalletAccount
	subs   map[int]chan Snapshot
	nextID int
}

// NewManager creates a manager in the Unloaded state.
func NewManager(st store.Store, issuer Issuer, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		issuer:   issuer,
		generate: keys.GenerateSeedPhrase,
		now:      time.Now,
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the stored credential. A corrupt record leaves the manager in
// NoCredential and is reported with ErrCorruptCredential; it is overwritten by
// the next successful RequestGuestAccess.
func (m *Manager) Load() error {
	cred, err := m.store.Get(model.LocalKeysName)
	switch {
	case errors.Is(err, store.ErrNotFound):
		cred = nil
	case err != nil:
		return fmt.Errorf("failed to load credential: %w", err)
	}

	var loadErr error
	if cred != nil {
		if err := cred.Validate(); err != nil {
			lg := logger.Get()
			lg.Warn().Err(err).Msg("ignoring corrupt guest credential")
			loadErr = fmt.Errorf("%w: %v", ErrCorruptCredential, err)
			cred = nil
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
	switch {
	case cred == nil:
		m.setStateLocked(NoCredential)
	case cred.SignedIn:
		m.setStateLocked(SignedIn)
	default:
		m.setStateLocked(SignedOut)
	}
	return loadErr
}

// Acquire takes the busy guard. Only one privileged operation may run at a
// time; a second caller gets ErrBusy immediately.
func (m *Manager) Acquire() (release func(), err error) {
	if !m.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	var once sync.Once
	return func() { once.Do(func() { m.busy.Store(false) }) }, nil
}

// Busy reports whether a privileged operation is in flight.
func (m *Manager) Busy() bool {
	return m.busy.Load()
}

// RequestGuestAccess creates, registers and verifies a new guest key pair
// when there is no credential, or signs the existing one in.
func (m *Manager) RequestGuestAccess(ctx context.Context) error {
	release, err := m.Acquire()
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	state, walletActive := m.state, m.wallet != nil
	m.mu.Unlock()

	switch {
	case state == Unloaded:
		return ErrNotLoaded
	case walletActive:
		return ErrSessionConflict
	case state == SignedIn:
		return nil
	case state == SignedOut:
		return m.signIn(ctx)
	}

	kp, err := m.generate()
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}
	defer kp.Wipe()

	log := logger.Get().With().Str("public_key", kp.PublicKeyString()).Logger()
	if err := m.issuer.RegisterKey(ctx, kp.PublicKeyString()); err != nil {
		log.Warn().Err(err).Msg("guest key registration failed")
		return fmt.Errorf("failed to register guest key: %w", err)
	}
	if err := m.issuer.VerifyKey(ctx, kp); err != nil {
		log.Warn().Err(err).Msg("guest key verification failed")
		return fmt.Errorf("failed to verify guest key: %w", err)
	}

	cred := model.NewCredential(kp, m.now().UTC().Format(time.RFC3339))

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wallet != nil {
		return ErrSessionConflict
	}
	if err := m.store.Set(model.LocalKeysName, cred); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	m.cred = cred
	m.setStateLocked(SignedIn)
	log.Info().Str("account_id", cred.DerivedAccountID).Msg("guest access granted")
	return nil
}

// SignIn marks the stored credential signed in. Without re-verification
// configured it makes no network call.
func (m *Manager) SignIn(ctx context.Context) error {
	if m.needsReverify() {
		release, err := m.Acquire()
		if err != nil {
			return err
		}
		defer release()
	}
	return m.signIn(ctx)
}

func (m *Manager) needsReverify() bool {
	if m.reverifyAfter <= 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == SignedOut && m.staleLocked()
}

func (m *Manager) staleLocked() bool {
	if m.reverifyAfter <= 0 || m.cred == nil {
		return false
	}
	verifiedAt, err := time.Parse(time.RFC3339, m.cred.VerifiedAt)
	if err != nil {
		return true
	}
	return m.now().Sub(verifiedAt) > m.reverifyAfter
}

func (m *Manager) signIn(ctx context.Context) error {
	m.mu.Lock()
	switch {
	case m.state == Unloaded:
		m.mu.Unlock()
		return ErrNotLoaded
	case m.wallet != nil:
		m.mu.Unlock()
		return ErrSessionConflict
	case m.state == NoCredential:
		m.mu.Unlock()
		return ErrNoCredential
	case m.state == SignedIn:
		m.mu.Unlock()
		return nil
	}

	next := m.cred.Clone()
	stale := m.staleLocked()
	m.mu.Unlock()

	if stale {
		kp, err := next.KeyPair()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptCredential, err)
		}
		defer kp.Wipe()
		if err := m.issuer.VerifyKey(ctx, kp); err != nil {
			return fmt.Errorf("failed to re-verify guest key: %w", err)
		}
		next.VerifiedAt = m.now().UTC().Format(time.RFC3339)
	}
	next.SignedIn = true

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != SignedOut || m.cred == nil || m.cred.PublicKey != next.PublicKey {
		return fmt.Errorf("credential changed during sign in")
	}
	if err := m.store.Set(model.LocalKeysName, next); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	m.cred = next
	m.setStateLocked(SignedIn)
	return nil
}

// SignOut marks the stored credential signed out. Idempotent.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Unloaded:
		return ErrNotLoaded
	case NoCredential:
		return ErrNoCredential
	case SignedOut:
		return nil
	}

	next := m.cred.Clone()
	next.SignedIn = false
	if err := m.store.Set(model.LocalKeysName, next); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	m.cred = next
	m.setStateLocked(SignedOut)
	return nil
}

// Revoke asks the issuer to drop every guest authorization and then deletes
// the local credential. On issuer failure the store is left as it was.
func (m *Manager) Revoke(ctx context.Context) error {
	release, err := m.Acquire()
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	switch state {
	case Unloaded:
		return ErrNotLoaded
	case NoCredential:
		return ErrNoCredential
	}

	if err := m.issuer.RevokeAll(ctx); err != nil {
		lg := logger.Get()
		lg.Warn().Err(err).Msg("revoke failed")
		return fmt.Errorf("failed to revoke guest keys: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(model.LocalKeysName); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	m.cred = nil
	m.setStateLocked(NoCredential)
	lg := logger.Get()
	lg.Info().Msg("guest keys revoked")
	return nil
}

// SignInWallet activates a wallet session. It fails while a guest is signed in.
func (m *Manager) SignInWallet(account *model.WalletAccount) error {
	if err := ValidateWalletAccount(account); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == SignedIn {
		return ErrSessionConflict
	}
	if m.wallet != nil && m.wallet.AccountID != account.AccountID {
		return ErrSessionConflict
	}
	copied := *account
	m.wallet = &copied
	m.publishLocked()
	lg := logger.Get()
	lg.Info().Str("account_id", account.AccountID).Msg("wallet signed in")
	return nil
}

// SignOutWallet ends the wallet session. Idempotent.
func (m *Manager) SignOutWallet() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wallet == nil {
		return
	}
	m.wallet = nil
	m.publishLocked()
}

// Authority returns the identity that currently authorizes contract calls.
func (m *Manager) Authority() (Authority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.wallet != nil:
		kp, err := keys.ParseSecretKey(m.wallet.PrivateKey)
		if err != nil {
			return Authority{}, err
		}
		return Authority{Kind: AuthorityWallet, AccountID: m.wallet.AccountID, Key: kp}, nil
	case m.state == SignedIn:
		kp, err := m.cred.KeyPair()
		if err != nil {
			return Authority{}, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
		}
		return Authority{Kind: AuthorityGuest, AccountID: m.cred.DerivedAccountID, Key: kp}, nil
	default:
		return Authority{Kind: AuthorityNone}, nil
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel that receives the current snapshot and every
// later one. Slow readers only see the latest snapshot. Call the returned
// function to unsubscribe; it closes the channel.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Snapshot, 1)
	ch <- m.snapshotLocked()
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state, Credential: m.cred.Clone()}
	if m.wallet != nil {
		snap.WalletAccountID = m.wallet.AccountID
	}
	return snap
}

func (m *Manager) setStateLocked(next State) {
	if m.state != next {
		metrics.SessionTransitionsTotal.WithLabelValues(m.state.String(), next.String()).Inc()
		lg := logger.Get()
		lg.Debug().Str("from", m.state.String()).Str("to", next.String()).Msg("session transition")
	}
	m.state = next
	m.publishLocked()
}

func (m *Manager) publishLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// drop the stale value and retry
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
