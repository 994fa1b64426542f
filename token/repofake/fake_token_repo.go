package repofake

import (
	"context"
	"sync"
	"time"

	"badstats/internal/errors"
	"badstats/token"
)

// FakeTokenRepo is a thread-safe in-memory implementation of token.Repo for
// tests.
type FakeTokenRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]token.Record
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{rows: make(map[int64]token.Record)}
}

func (r *FakeTokenRepo) Insert(_ context.Context, rec *token.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	r.rows[rec.ID] = *rec
	return nil
}

func (r *FakeTokenRepo) FindClient(_ context.Context) (*token.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *token.Record
	for _, rec := range r.rows {
		if rec.Kind != token.KindClient {
			continue
		}
		if found == nil || rec.ID < found.ID {
			rec := rec
			found = &rec
		}
	}
	if found == nil {
		return nil, errors.ErrNotFound
	}
	return found, nil
}

func (r *FakeTokenRepo) FindBySession(_ context.Context, sessionID string) (*token.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.rows {
		if rec.Kind == token.KindUser && rec.SessionID == sessionID {
			rec := rec
			return &rec, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *FakeTokenRepo) UpdateBySession(_ context.Context, sessionID, value string, expires time.Time, refresh string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.rows {
		if rec.Kind == token.KindUser && rec.SessionID == sessionID {
			rec.Value = value
			rec.Expires = expires
			rec.Refresh = refresh
			r.rows[id] = rec
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *FakeTokenRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, id)
	return nil
}

func (r *FakeTokenRepo) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.rows {
		if rec.Kind == token.KindUser && rec.SessionID == sessionID {
			delete(r.rows, id)
		}
	}
	return nil
}

// Count reports the number of stored rows of the given kind.
func (r *FakeTokenRepo) Count(kind token.Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rec := range r.rows {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}
