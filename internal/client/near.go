package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/mr-tron/base58"
	"github.com/tidwall/gjson"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
)

const (
	defaultRPCTimeout = 30 * time.Second
	finalityFinal     = "final"
)

var (
	// ErrNodeUnreachable covers transport failures talking to the RPC node.
	ErrNodeUnreachable = errors.New("rpc node unreachable")
	// ErrAccessKeyNotFound is returned when the signer key is not registered on chain.
	ErrAccessKeyNotFound = errors.New("access key not found")
)

// ChainError is a failure reported by the node or by transaction execution.
// Message is the most specific human readable message found in the payload
// (e.g. a contract panic message); Raw keeps the full JSON for classification.
type ChainError struct {
	Method  string
	Code    int
	Message string
	Raw     string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// Signer is an account id and the key that signs for it.
type Signer struct {
	AccountID string
	Key       *keys.KeyPair
}

// AccessKeyView is the part of a view_access_key answer a transaction needs.
type AccessKeyView struct {
	Nonce     uint64
	BlockHash [32]byte
}

// TxOutcome is the result of a committed transaction.
type TxOutcome struct {
	Hash  string
	Value json.RawMessage // decoded SuccessValue, nil when the call returned nothing
}

type rpcCaller interface {
	Call(ctx context.Context, method string, params ...interface{}) (*jsonrpc.RPCResponse, error)
}

// NearClient is a client for the chain JSON-RPC API.
type NearClient struct {
	rpc     rpcCaller
	rpcURL  string
	timeout time.Duration
}

// NewNearClient creates a new RPC client. timeout <= 0 means 30s.
func NewNearClient(rpcURL string, timeout time.Duration) *NearClient {
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	rpcClient := jsonrpc.NewClientWithOpts(rpcURL, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: timeout},
	})
	return &NearClient{
		rpc:     rpcClient,
		rpcURL:  rpcURL,
		timeout: timeout,
	}
}

// ViewFunction runs a read-only contract method and returns its JSON result.
func (c *NearClient) ViewFunction(ctx context.Context, contractID, method string, args []byte) (json.RawMessage, error) {
	if args == nil {
		args = []byte("{}")
	}
	result, err := c.call(ctx, "query", map[string]interface{}{
		"request_type": "call_function",
		"finality":     finalityFinal,
		"account_id":   contractID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(args),
	})
	if err != nil {
		return nil, err
	}

	// older nodes report contract panics inside the result
	if msg := gjson.GetBytes(result, "error"); msg.Exists() {
		return nil, &ChainError{Method: method, Message: panicMessage(msg.String()), Raw: string(result)}
	}

	raw := gjson.GetBytes(result, "result")
	if !raw.IsArray() {
		return nil, fmt.Errorf("failed to parse %s result: missing result bytes", method)
	}
	out := make([]byte, 0, len(raw.Array()))
	for _, b := range raw.Array() {
		out = append(out, byte(b.Uint()))
	}
	if len(out) == 0 {
		return nil, nil
	}
	if !json.Valid(out) {
		return nil, fmt.Errorf("failed to parse %s result: not JSON", method)
	}
	return out, nil
}

// ViewAccessKey returns nonce and latest final block hash for a key of accountID.
func (c *NearClient) ViewAccessKey(ctx context.Context, accountID, publicKey string) (*AccessKeyView, error) {
	result, err := c.call(ctx, "query", map[string]interface{}{
		"request_type": "view_access_key",
		"finality":     finalityFinal,
		"account_id":   accountID,
		"public_key":   publicKey,
	})
	if err != nil {
		var chainErr *ChainError
		if errors.As(err, &chainErr) && isUnknownAccessKey(chainErr.Raw) {
			return nil, fmt.Errorf("%w: %s for %s", ErrAccessKeyNotFound, publicKey, accountID)
		}
		return nil, err
	}
	if msg := gjson.GetBytes(result, "error"); msg.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrAccessKeyNotFound, msg.String())
	}

	hash, err := base58.Decode(gjson.GetBytes(result, "block_hash").String())
	if err != nil || len(hash) != 32 {
		return nil, fmt.Errorf("failed to decode block hash")
	}
	view := &AccessKeyView{Nonce: gjson.GetBytes(result, "nonce").Uint()}
	copy(view.BlockHash[:], hash)
	return view, nil
}

// CallFunction signs and submits a single function call and waits for the outcome.
func (c *NearClient) CallFunction(ctx context.Context, signer Signer, receiverID, method string, args []byte, gas uint64, deposit *big.Int) (json.RawMessage, error) {
	outcome, err := c.SendActions(ctx, signer, receiverID, FunctionCallAction{
		MethodName: method,
		Args:       args,
		Gas:        gas,
		Deposit:    deposit,
	})
	if err != nil {
		var chainErr *ChainError
		if errors.As(err, &chainErr) && chainErr.Method == "broadcast_tx_commit" {
			chainErr.Method = method
		}
		return nil, err
	}
	return outcome.Value, nil
}

// SendActions builds, signs and commits a transaction. Every call fetches a
// fresh nonce; concurrent calls with the same key may collide.
func (c *NearClient) SendActions(ctx context.Context, signer Signer, receiverID string, actions ...Action) (*TxOutcome, error) {
	view, err := c.ViewAccessKey(ctx, signer.AccountID, signer.Key.PublicKeyString())
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		SignerID:   signer.AccountID,
		PublicKey:  signer.Key.PublicKey(),
		Nonce:      view.Nonce + 1,
		ReceiverID: receiverID,
		BlockHash:  view.BlockHash,
		Actions:    actions,
	}
	signed, hash, err := tx.Sign(signer.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	txHash := base58.Encode(hash[:])
	lg := logger.Get()
	lg.Debug().
		Str("signer", signer.AccountID).
		Str("receiver", receiverID).
		Str("tx", txHash).
		Msg("broadcasting transaction")

	result, err := c.call(ctx, "broadcast_tx_commit", []interface{}{base64.StdEncoding.EncodeToString(signed)})
	if err != nil {
		return nil, err
	}
	return parseOutcome(txHash, result)
}

func parseOutcome(txHash string, result json.RawMessage) (*TxOutcome, error) {
	status := gjson.GetBytes(result, "status")
	if failure := status.Get("Failure"); failure.Exists() {
		return nil, &ChainError{
			Method:  "broadcast_tx_commit",
			Message: failureMessage(failure),
			Raw:     failure.Raw,
		}
	}

	success := status.Get("SuccessValue")
	if !success.Exists() {
		return nil, fmt.Errorf("transaction %s: unexpected status %s", txHash, status.Raw)
	}

	outcome := &TxOutcome{Hash: txHash}
	if success.String() == "" {
		return outcome, nil
	}
	value, err := base64.StdEncoding.DecodeString(success.String())
	if err != nil {
		return nil, fmt.Errorf("failed to decode success value: %w", err)
	}
	outcome.Value = value
	return outcome, nil
}

func (c *NearClient) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.rpc.Call(ctx, method, params)
	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return nil, chainErrorFromRPC(method, rpcErr)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNodeUnreachable, method, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: %s: empty response", ErrNodeUnreachable, method)
	}
	if resp.Error != nil {
		return nil, chainErrorFromRPC(method, resp.Error)
	}

	var result json.RawMessage
	if err := resp.GetObject(&result); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return result, nil
}

func chainErrorFromRPC(method string, rpcErr *jsonrpc.RPCError) *ChainError {
	raw, _ := json.Marshal(rpcErr)
	e := &ChainError{
		Method:  method,
		Code:    rpcErr.Code,
		Message: rpcErr.Message,
		Raw:     string(raw),
	}

	data := gjson.GetBytes(raw, "data")
	switch {
	case !data.Exists():
	case data.Type == gjson.String:
		e.Message = panicMessage(data.String())
	case data.Get("TxExecutionError").Exists(), data.Get("ActionError").Exists(), data.Get("InvalidTxError").Exists():
		e.Message = failureMessage(data)
	}
	return e
}

func isUnknownAccessKey(raw string) bool {
	return strings.Contains(raw, "UNKNOWN_ACCESS_KEY") ||
		(strings.Contains(raw, "access key") && strings.Contains(raw, "does not exist"))
}

const panicPrefix = "Smart contract panicked: "

// panicMessage reduces a wrapped execution error such as
// `wasm execution failed with error: FunctionCallError(ExecutionError("Smart contract panicked: Out of free mints"))`
// to the contract's own message.
func panicMessage(s string) string {
	if i := strings.Index(s, panicPrefix); i >= 0 {
		s = s[i+len(panicPrefix):]
		s = strings.TrimRight(s, `")`)
	}
	return strings.TrimSpace(s)
}

// failureMessage digs the contract panic or action error out of a failure object.
func failureMessage(failure gjson.Result) string {
	paths := []string{
		"ActionError.kind.FunctionCallError.ExecutionError",
		"ActionError.kind.FunctionCallError.HostError.GuestPanic.panic_msg",
		"TxExecutionError.ActionError.kind.FunctionCallError.ExecutionError",
		"TxExecutionError.ActionError.kind.FunctionCallError.HostError.GuestPanic.panic_msg",
	}
	for _, p := range paths {
		if v := failure.Get(p); v.Exists() {
			return panicMessage(v.String())
		}
	}
	if kind := failure.Get("ActionError.kind"); kind.Exists() {
		return kind.Raw
	}
	if invalid := failure.Get("InvalidTxError"); invalid.Exists() {
		return "invalid transaction: " + invalid.Raw
	}
	return failure.Raw
}
