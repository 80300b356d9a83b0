// Package issuer is a reference implementation of the key issuing ("helper")
// service: it authorizes guest public keys against the application account
// and answers the signed has-access-key check.
package issuer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrDuplicateKey is returned by Registry.Add for a key that is already registered.
var ErrDuplicateKey = errors.New("public key already registered")

// Record is one authorized guest key.
type Record struct {
	PublicKey string    `json:"publicKey"`
	AccountID string    `json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry stores authorization records.
type Registry interface {
	Add(ctx context.Context, rec Record) error
	Has(ctx context.Context, publicKey string) (bool, error)
	List(ctx context.Context) ([]Record, error)
	// Delete removes the records for publicKeys and returns how many existed.
	Delete(ctx context.Context, publicKeys []string) (int, error)
}

// MemoryRegistry keeps records in a map.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{records: make(map[string]Record)}
}

func (r *MemoryRegistry) Add(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.PublicKey]; ok {
		return ErrDuplicateKey
	}
	r.records[rec.PublicKey] = rec
	return nil
}

func (r *MemoryRegistry) Has(_ context.Context, publicKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.records[publicKey]
	return ok, nil
}

// List returns records oldest first.
func (r *MemoryRegistry) List(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sortRecords(out)
	return out, nil
}

func (r *MemoryRegistry) Delete(_ context.Context, publicKeys []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, pk := range publicKeys {
		if _, ok := r.records[pk]; ok {
			delete(r.records, pk)
			n++
		}
	}
	return n, nil
}

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].PublicKey < recs[j].PublicKey
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
}
