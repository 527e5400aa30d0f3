package cart

import (
	"context"
	"sync"
	"time"

	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// Store opens carts by session id.
type Store interface {
	Open(ctx context.Context, sessionID string) (*Cart, error)
}

type keyedRedisStore interface {
	redisStore
	CartKey(sessionID string) string
}

type redisCartStore struct {
	client keyedRedisStore
	ttl    time.Duration
	logg   *logger.Logger
}

// NewRedisStore opens carts persisted in Redis under gs:cart:<session>.
func NewRedisStore(client keyedRedisStore, ttl time.Duration, logg *logger.Logger) Store {
	return &redisCartStore{client: client, ttl: ttl, logg: logg}
}

func (s *redisCartStore) Open(ctx context.Context, sessionID string) (*Cart, error) {
	storage, err := NewRedisStorage(s.client, s.client.CartKey(sessionID), s.ttl)
	if err != nil {
		return nil, err
	}
	c := New(storage, s.logg)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

type memoryCartStore struct {
	mu       sync.Mutex
	sessions map[string]*MemoryStorage
	logg     *logger.Logger
}

// NewMemoryStore keeps every session's cart in process memory.
func NewMemoryStore(logg *logger.Logger) Store {
	return &memoryCartStore{sessions: map[string]*MemoryStorage{}, logg: logg}
}

func (s *memoryCartStore) Open(ctx context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	storage, ok := s.sessions[sessionID]
	if !ok {
		storage = NewMemoryStorage()
		s.sessions[sessionID] = storage
	}
	s.mu.Unlock()

	c := New(storage, s.logg)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
