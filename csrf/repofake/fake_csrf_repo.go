package repofake

import (
	"context"
	"sync"

	"badstats/csrf"
	"badstats/internal/errors"
)

// FakeCSRFRepo is a thread-safe in-memory implementation of csrf.Repo for
// tests.
type FakeCSRFRepo struct {
	mu   sync.RWMutex
	rows map[string]csrf.Record
}

func NewFakeCSRFRepo() *FakeCSRFRepo {
	return &FakeCSRFRepo{rows: make(map[string]csrf.Record)}
}

func (r *FakeCSRFRepo) Insert(_ context.Context, rec *csrf.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[rec.Token] = *rec
	return nil
}

func (r *FakeCSRFRepo) Get(_ context.Context, tokenValue string) (*csrf.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rows[tokenValue]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &rec, nil
}

func (r *FakeCSRFRepo) Delete(_ context.Context, tokenValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, tokenValue)
	return nil
}

// Len reports the number of stored tokens.
func (r *FakeCSRFRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rows)
}
