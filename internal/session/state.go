package session

import (
	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// State is the guest credential state.
type State int

const (
	Unloaded State = iota
	NoCredential
	SignedOut
	SignedIn
)

func (s State) String() string {
	switch s {
	case NoCredential:
		return "no_credential"
	case SignedOut:
		return "signed_out"
	case SignedIn:
		return "signed_in"
	default:
		return "unloaded"
	}
}

// AuthorityKind tells which session, if any, authorizes contract calls.
type AuthorityKind int

const (
	AuthorityNone AuthorityKind = iota
	AuthorityWallet
	AuthorityGuest
)

func (k AuthorityKind) String() string {
	switch k {
	case AuthorityWallet:
		return "wallet"
	case AuthorityGuest:
		return "guest"
	default:
		return "none"
	}
}

// Authority is the active identity. For a guest AccountID is the implicit
// account; Key is the guest or wallet key pair and is nil for AuthorityNone.
type Authority struct {
	Kind      AuthorityKind
	AccountID string
	Key       *keys.KeyPair
}

// Snapshot is an immutable view of the session published to readers.
type Snapshot struct {
	State           State
	Credential      *model.Credential // copy, nil when NoCredential
	WalletAccountID string
}

// Authority reports the authority kind described by the snapshot.
func (s Snapshot) Authority() AuthorityKind {
	switch {
	case s.WalletAccountID != "":
		return AuthorityWallet
	case s.State == SignedIn:
		return AuthorityGuest
	default:
		return AuthorityNone
	}
}
