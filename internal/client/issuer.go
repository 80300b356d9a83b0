package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/metrics"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

const (
	defaultIssuerTimeout = 30 * time.Second
	maxIssuerBody        = 1 << 20

	opAddKey       = "add_key"
	opHasAccessKey = "has_access_key"
	opDeleteKeys   = "delete_access_keys"
)

var (
	// ErrUnreachable covers transport failures and timeouts.
	ErrUnreachable = errors.New("issuer service unreachable")
	// ErrRejected means the issuer answered {"success": false}.
	ErrRejected = errors.New("issuer rejected the request")
	// ErrUnexpectedStatus means a non-2xx answer or a body that is not an issuer response.
	ErrUnexpectedStatus = errors.New("unexpected issuer response")
)

// IssuerError describes a failed issuer call. Match it with errors.Is against
// ErrUnreachable, ErrRejected or ErrUnexpectedStatus.
type IssuerError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
	cause      error
}

func (e *IssuerError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "issuer %s: %v", e.Op, e.Err)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *IssuerError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// IssuerClient talks to the key issuing ("helper") service.
type IssuerClient struct {
	baseURL      string
	contractName string
	client       *http.Client
	eligibility  Eligibility
	now          func() time.Time
}

// IssuerOption customises an IssuerClient.
type IssuerOption func(*IssuerClient)

// WithHTTPClient replaces the HTTP client. Its Timeout is left as given.
func WithHTTPClient(c *http.Client) IssuerOption {
	return func(ic *IssuerClient) { ic.client = c }
}

// WithEligibility sets the proof attached to add-key requests.
func WithEligibility(e Eligibility) IssuerOption {
	return func(ic *IssuerClient) { ic.eligibility = e }
}

// WithClock overrides the clock used for issuedAt.
func WithClock(now func() time.Time) IssuerOption {
	return func(ic *IssuerClient) { ic.now = now }
}

// NewIssuerClient creates a new issuer client. timeout <= 0 means 30s.
func NewIssuerClient(baseURL, contractName string, timeout time.Duration, opts ...IssuerOption) *IssuerClient {
	if timeout <= 0 {
		timeout = defaultIssuerTimeout
	}
	ic := &IssuerClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		contractName: contractName,
		client:       &http.Client{Timeout: timeout},
		eligibility:  NoEligibility{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

// RegisterKey asks the issuer to authorize publicKey against the application account.
func (c *IssuerClient) RegisterKey(ctx context.Context, publicKey string) error {
	body, err := json.Marshal(model.AddKeyRequest{PublicKey: publicKey})
	if err != nil {
		return fmt.Errorf("failed to marshal add-key request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add-key", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build add-key request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.eligibility.Apply(ctx, req, publicKey); err != nil {
		return fmt.Errorf("failed to attach %s eligibility: %w", c.eligibility.Kind(), err)
	}
	return c.do(opAddKey, req)
}

// VerifyKey asks the issuer to confirm kp is authorized. The request is signed
// with kp itself so the issuer can check the caller holds the secret key.
func (c *IssuerClient) VerifyKey(ctx context.Context, kp *keys.KeyPair) error {
	issuedAt := c.now().Unix()
	sig, err := kp.Sign(model.VerificationMessage(c.contractName, issuedAt))
	if err != nil {
		return err
	}

	body, err := json.Marshal(model.HasAccessKeyRequest{
		AccountID:    kp.ImplicitAccountID(),
		ContractName: c.contractName,
		PublicKey:    kp.PublicKeyString(),
		IssuedAt:     issuedAt,
		Signature:    base64.StdEncoding.EncodeToString(sig),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal has-access-key request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/has-access-key", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build has-access-key request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(opHasAccessKey, req)
}

// RevokeAll deletes every guest authorization of the application account.
func (c *IssuerClient) RevokeAll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/delete-access-keys", nil)
	if err != nil {
		return fmt.Errorf("failed to build delete-access-keys request: %w", err)
	}
	return c.do(opDeleteKeys, req)
}

func (c *IssuerClient) do(op string, req *http.Request) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	log := logger.Get().With().Str("op", op).Str("request_id", requestID).Logger()
	start := time.Now()
	defer func() {
		metrics.IssuerRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("issuer unreachable")
		metrics.IssuerRequestsTotal.WithLabelValues(op, "unreachable").Inc()
		return &IssuerError{Op: op, Err: ErrUnreachable, cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxIssuerBody))
	if err != nil {
		metrics.IssuerRequestsTotal.WithLabelValues(op, "unreachable").Inc()
		return &IssuerError{Op: op, StatusCode: resp.StatusCode, Err: ErrUnreachable, cause: err}
	}

	var result model.IssuerResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("error", result.Error).Msg("issuer returned error status")
		metrics.IssuerRequestsTotal.WithLabelValues(op, "status").Inc()
		return &IssuerError{Op: op, StatusCode: resp.StatusCode, Message: result.Error, Err: ErrUnexpectedStatus}
	}
	if decodeErr != nil {
		metrics.IssuerRequestsTotal.WithLabelValues(op, "status").Inc()
		return &IssuerError{Op: op, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus, cause: decodeErr}
	}
	if !result.Success {
		log.Info().Str("error", result.Error).Msg("issuer rejected request")
		metrics.IssuerRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return &IssuerError{Op: op, StatusCode: resp.StatusCode, Message: result.Error, Err: ErrRejected}
	}

	log.Debug().Dur("took", time.Since(start)).Msg("issuer call succeeded")
	metrics.IssuerRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}
