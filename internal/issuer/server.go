package issuer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/metrics"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

const (
	defaultMaxClockSkew = 5 * time.Minute
	maxRequestBody      = 64 << 10

	endpointAddKey       = "add_key"
	endpointHasAccessKey = "has_access_key"
	endpointDeleteKeys   = "delete_access_keys"
)

// Config configures a Server. Nil collaborators get in-memory or no-op defaults.
type Config struct {
	ContractName string
	AllowRevoke  bool
	MaxClockSkew time.Duration

	Registry   Registry
	Limiter    Limiter
	Verifier   Verifier
	Authorizer Authorizer
	Now        func() time.Time
}

// Server is the reference key issuing service.
type Server struct {
	contractName string
	allowRevoke  bool
	maxSkew      time.Duration

	registry   Registry
	limiter    Limiter
	verifier   Verifier
	authorizer Authorizer
	now        func() time.Time
}

func NewServer(cfg Config) *Server {
	s := &Server{
		contractName: cfg.ContractName,
		allowRevoke:  cfg.AllowRevoke,
		maxSkew:      cfg.MaxClockSkew,
		registry:     cfg.Registry,
		limiter:      cfg.Limiter,
		verifier:     cfg.Verifier,
		authorizer:   cfg.Authorizer,
		now:          cfg.Now,
	}
	if s.maxSkew <= 0 {
		s.maxSkew = defaultMaxClockSkew
	}
	if s.registry == nil {
		s.registry = NewMemoryRegistry()
	}
	if s.limiter == nil {
		s.limiter = noLimit{}
	}
	if s.verifier == nil {
		s.verifier = AllowAll{}
	}
	if s.authorizer == nil {
		s.authorizer = NoopAuthorizer{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the HTTP handler serving the issuer endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/add-key", s.addKey)
	mux.HandleFunc("/has-access-key", s.hasAccessKey)
	mux.HandleFunc("/delete-access-keys", s.deleteAccessKeys)
	return mux
}

func (s *Server) addKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	log := logger.Get().With().Str("endpoint", endpointAddKey).Str("request_id", r.Header.Get("X-Request-ID")).Logger()

	var req model.AddKeyRequest
	if err := decodeBody(r, &req); err != nil {
		s.reply(w, endpointAddKey, "bad_request", http.StatusBadRequest, err)
		return
	}
	accountID, err := keys.ImplicitAccountID(req.PublicKey)
	if err != nil {
		s.reply(w, endpointAddKey, "bad_request", http.StatusBadRequest, err)
		return
	}

	allowed, err := s.limiter.Allow(ctx, clientIP(r))
	if err != nil {
		log.Error().Err(err).Msg("rate limiter failed")
		s.reply(w, endpointAddKey, "error", http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if !allowed {
		s.reply(w, endpointAddKey, "rate_limited", http.StatusTooManyRequests, errors.New("too many requests"))
		return
	}

	if err := s.verifier.Verify(r, req.PublicKey); err != nil {
		log.Info().Err(err).Str("public_key", req.PublicKey).Msg("ineligible add-key request")
		s.reply(w, endpointAddKey, "ineligible", http.StatusOK, err)
		return
	}

	known, err := s.registry.Has(ctx, req.PublicKey)
	if err != nil {
		log.Error().Err(err).Msg("registry lookup failed")
		s.reply(w, endpointAddKey, "error", http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if known {
		s.reply(w, endpointAddKey, "rejected", http.StatusOK, ErrDuplicateKey)
		return
	}

	if err := s.authorizer.Authorize(ctx, req.PublicKey); err != nil {
		log.Error().Err(err).Str("public_key", req.PublicKey).Msg("failed to authorize key on chain")
		s.reply(w, endpointAddKey, "error", http.StatusBadGateway, errors.New("failed to authorize key"))
		return
	}

	err = s.registry.Add(ctx, Record{PublicKey: req.PublicKey, AccountID: accountID, CreatedAt: s.now().UTC()})
	if errors.Is(err, ErrDuplicateKey) {
		s.reply(w, endpointAddKey, "rejected", http.StatusOK, err)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("registry add failed")
		s.reply(w, endpointAddKey, "error", http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	log.Info().Str("account_id", accountID).Msg("guest key authorized")
	s.reply(w, endpointAddKey, "ok", http.StatusOK, nil)
}

func (s *Server) hasAccessKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.HasAccessKeyRequest
	if err := decodeBody(r, &req); err != nil {
		s.reply(w, endpointHasAccessKey, "bad_request", http.StatusBadRequest, err)
		return
	}

	if err := s.checkVerification(r.Context(), req); err != nil {
		lg := logger.Get()
		lg.Info().Err(err).Str("public_key", req.PublicKey).Msg("access key check failed")
		s.reply(w, endpointHasAccessKey, "rejected", http.StatusOK, err)
		return
	}
	s.reply(w, endpointHasAccessKey, "ok", http.StatusOK, nil)
}

// checkVerification validates a signed has-access-key request against the registry.
func (s *Server) checkVerification(ctx context.Context, req model.HasAccessKeyRequest) error {
	if req.ContractName != s.contractName {
		return fmt.Errorf("unknown contract %q", req.ContractName)
	}

	issued := time.Unix(req.IssuedAt, 0)
	if skew := s.now().Sub(issued); skew > s.maxSkew || skew < -s.maxSkew {
		return errors.New("request expired")
	}

	accountID, err := keys.ImplicitAccountID(req.PublicKey)
	if err != nil {
		return err
	}
	if req.AccountID != accountID {
		return errors.New("account id does not match public key")
	}

	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return errors.New("malformed signature")
	}
	if !keys.Verify(req.PublicKey, model.VerificationMessage(req.ContractName, req.IssuedAt), sig) {
		return errors.New("invalid signature")
	}

	ok, err := s.registry.Has(ctx, req.PublicKey)
	if err != nil {
		return fmt.Errorf("registry lookup: %w", err)
	}
	if !ok {
		return errors.New("access key not found")
	}
	return nil
}

func (s *Server) deleteAccessKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	if !s.allowRevoke {
		s.reply(w, endpointDeleteKeys, "rejected", http.StatusForbidden, errors.New("revoking keys is disabled"))
		return
	}
	ctx := r.Context()
	log := logger.Get().With().Str("endpoint", endpointDeleteKeys).Logger()

	records, err := s.registry.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("registry list failed")
		s.reply(w, endpointDeleteKeys, "error", http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	publicKeys := make([]string, 0, len(records))
	for _, rec := range records {
		publicKeys = append(publicKeys, rec.PublicKey)
	}
	if err := s.authorizer.Revoke(ctx, publicKeys); err != nil {
		log.Error().Err(err).Msg("failed to delete keys on chain")
		s.reply(w, endpointDeleteKeys, "error", http.StatusBadGateway, errors.New("failed to delete keys"))
		return
	}

	// keys registered after List were not revoked on chain, keep their records
	n, err := s.registry.Delete(ctx, publicKeys)
	if err != nil {
		log.Error().Err(err).Msg("registry delete failed")
		s.reply(w, endpointDeleteKeys, "error", http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	log.Info().Int("deleted", n).Msg("guest keys revoked")
	s.reply(w, endpointDeleteKeys, "ok", http.StatusOK, nil)
}

func (s *Server) reply(w http.ResponseWriter, endpoint, result string, status int, err error) {
	metrics.IssuedKeysTotal.WithLabelValues(endpoint, result).Inc()

	resp := model.IssuerResponse{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		lg := logger.Get()
		lg.Warn().Err(err).Msg("failed to write response")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
