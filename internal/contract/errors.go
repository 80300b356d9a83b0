package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AlexZinkM/guest-wallet/internal/client"
)

// Kind classifies a failed contract call.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindNotFound
	KindLimitExceeded
	KindUnauthorized
	KindInvalidArgument
	KindNotForSale
	KindDepositMismatch
	KindNothingToWithdraw
	KindRejected
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindTransport:         "transport",
	KindNotFound:          "not_found",
	KindLimitExceeded:     "limit_exceeded",
	KindUnauthorized:      "unauthorized",
	KindInvalidArgument:   "invalid_argument",
	KindNotForSale:        "not_for_sale",
	KindDepositMismatch:   "deposit_mismatch",
	KindNothingToWithdraw: "nothing_to_withdraw",
	KindRejected:          "rejected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a contract call failure with a stable kind.
type Error struct {
	Kind    Kind
	Method  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Method, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Method, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a contract error, KindUnknown for anything else.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a contract error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// contract panic messages, matched as substrings
var messageKinds = []struct {
	pattern string
	kind    Kind
}{
	{"Out of free mints", KindLimitExceeded},
	{"No owner of the token ID specified", KindNotFound},
	{"No message", KindNotFound},
	{"not for sale", KindNotForSale},
	{"deposit != price", KindDepositMismatch},
	{"nothing to withdraw", KindNothingToWithdraw},
	{"Attempt to call transfer on tokens belonging to another account", KindUnauthorized},
	{"Only contract owner can call this method", KindUnauthorized},
	{"Failed to deserialize input", KindInvalidArgument},
	{"missing field", KindInvalidArgument},
	{"invalid type", KindInvalidArgument},
}

// action errors found in the raw failure payload
var rawKinds = []struct {
	path string
	kind Kind
}{
	{"InvalidTxError.InvalidAccessKeyError", KindUnauthorized},
	{"ActionError.kind.FunctionCallError.MethodResolveError", KindInvalidArgument},
	{"ActionError.kind.AccountDoesNotExist", KindNotFound},
}

func classify(method string, err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	e := &Error{Method: method, Message: err.Error(), Err: err}

	var chainErr *client.ChainError
	switch {
	case errors.Is(err, client.ErrNodeUnreachable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		e.Kind = KindTransport
	case errors.Is(err, client.ErrAccessKeyNotFound):
		e.Kind = KindUnauthorized
	case errors.As(err, &chainErr):
		e.Message = chainErr.Message
		e.Kind = classifyChain(chainErr)
	default:
		e.Kind = KindUnknown
	}
	return e
}

func classifyChain(chainErr *client.ChainError) Kind {
	for _, mk := range messageKinds {
		if strings.Contains(chainErr.Message, mk.pattern) {
			return mk.kind
		}
	}
	if gjson.Valid(chainErr.Raw) {
		raw := gjson.Parse(chainErr.Raw)
		for _, rk := range rawKinds {
			if raw.Get(rk.path).Exists() || raw.Get("data.TxExecutionError."+rk.path).Exists() {
				return rk.kind
			}
		}
	}
	return KindRejected
}
