package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/utils"
	"github.com/redis/go-redis/v9"
)

var (
	ErrDraftSessionNotFound = errors.New("draft session not found")
	ErrDraftSessionExists   = errors.New("draft session already exists")
	ErrDraftConflict        = errors.New("draft session modified concurrently")
)

const draftStoreMaxRetries = 8

// MemoryDraftStore keeps sessions in process memory
type MemoryDraftStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryDraftEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryDraftEntry struct {
	session   *models.DraftSession
	expiresAt time.Time
}

// NewMemoryDraftStore creates a store whose sessions expire ttl after their last write.
// A zero ttl keeps sessions forever.
func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		sessions: make(map[string]*memoryDraftEntry),
		ttl:      ttl,
		now:      utils.UTCNow,
	}
}

func (s *MemoryDraftStore) lookup(id string) (*memoryDraftEntry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}

func (s *MemoryDraftStore) put(session *models.DraftSession) {
	s.sessions[session.ID] = &memoryDraftEntry{
		session:   copySession(session),
		expiresAt: s.now().Add(s.ttl),
	}
}

// Get returns a copy of the session
func (s *MemoryDraftStore) Get(ctx context.Context, id string) (*models.DraftSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrDraftSessionNotFound
	}
	return copySession(e.session), nil
}

// Create stores a new session
func (s *MemoryDraftStore) Create(ctx context.Context, session *models.DraftSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(session.ID); ok {
		return ErrDraftSessionExists
	}
	s.put(session)
	return nil
}

// Update applies fn to the session under the store lock
func (s *MemoryDraftStore) Update(ctx context.Context, id string, fn func(*models.DraftSession) error) (*models.DraftSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrDraftSessionNotFound
	}
	working := copySession(e.session)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Revision++
	s.put(working)
	return copySession(working), nil
}

// Delete removes the session
func (s *MemoryDraftStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// RedisDraftStore keeps sessions as JSON values in redis
type RedisDraftStore struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDraftStore creates a redis backed store. Keys are "<prefix>draft:<id>".
func NewRedisDraftStore(rc *redis.Client, prefix string, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{rc: rc, prefix: prefix, ttl: ttl}
}

func (s *RedisDraftStore) key(id string) string {
	return s.prefix + "draft:" + id
}

func (s *RedisDraftStore) decode(bs []byte) (*models.DraftSession, error) {
	var session models.DraftSession
	if err := json.Unmarshal(bs, &session); err != nil {
		return nil, fmt.Errorf("failed to decode draft session: %w", err)
	}
	return &session, nil
}

// Get loads the session
func (s *RedisDraftStore) Get(ctx context.Context, id string) (*models.DraftSession, error) {
	bs, err := s.rc.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftSessionNotFound
		}
		return nil, fmt.Errorf("failed to load draft session: %w", err)
	}
	return s.decode(bs)
}

// Create stores a new session
func (s *RedisDraftStore) Create(ctx context.Context, session *models.DraftSession) error {
	bs, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode draft session: %w", err)
	}
	ok, err := s.rc.SetNX(ctx, s.key(session.ID), bs, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store draft session: %w", err)
	}
	if !ok {
		return ErrDraftSessionExists
	}
	return nil
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when the key changes underneath
func (s *RedisDraftStore) Update(ctx context.Context, id string, fn func(*models.DraftSession) error) (*models.DraftSession, error) {
	key := s.key(id)
	var updated *models.DraftSession

	txf := func(tx *redis.Tx) error {
		bs, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrDraftSessionNotFound
			}
			return err
		}
		session, err := s.decode(bs)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		session.Revision++
		out, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode draft session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = session
		return nil
	}

	for range draftStoreMaxRetries {
		err := s.rc.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrDraftConflict
}

// Delete removes the session
func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.rc.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft session: %w", err)
	}
	return nil
}

func copySession(s *models.DraftSession) *models.DraftSession {
	out := *s
	out.Draft = s.Draft.Clone()
	if s.Estimate.Count != nil {
		c := *s.Estimate.Count
		out.Estimate.Count = &c
	}
	if s.Estimate.UpdatedAt != nil {
		t := *s.Estimate.UpdatedAt
		out.Estimate.UpdatedAt = &t
	}
	return &out
}
