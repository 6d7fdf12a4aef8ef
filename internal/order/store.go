package order

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/storage"
	"github.com/rs/zerolog"
)

// OrdersBlob is the storage key name of a profile's order history.
const OrdersBlob = "orders"

// Store is the canonical order list for one profile. New orders go to the
// front, so ReadAll returns newest first. Every mutation rewrites the whole
// list with a single Put.
type Store struct {
	backend storage.Storage
	key     string
	mu      *sync.Mutex
}

// NewStore creates a store over one key with its own lock.
func NewStore(backend storage.Storage, key string) *Store {
	return &Store{backend: backend, key: key, mu: &sync.Mutex{}}
}

// ReadAll returns the persisted orders. A missing or unparseable blob reads
// as an empty list; only backend failures are returned as errors.
func (s *Store) ReadAll(ctx context.Context) ([]Order, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []Order{}, nil
	}

	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("key", s.key).Msg("discarding unreadable order blob")
		return []Order{}, nil
	}
	if orders == nil {
		return []Order{}, nil
	}
	for i := range orders {
		orders[i].Status = orders[i].Status.Normalize()
	}
	return orders, nil
}

// Append inserts o at the front of the list.
func (s *Store) Append(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}
	orders = append([]Order{o}, orders...)
	return s.write(ctx, orders)
}

// FindByID scans the list for id.
func (s *Store) FindByID(ctx context.Context, id string) (Order, bool, error) {
	orders, err := s.ReadAll(ctx)
	if err != nil {
		return Order{}, false, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}

// AdvanceStatus moves the order one step along the lifecycle and persists the
// list. An unknown id returns false and writes nothing.
func (s *Store) AdvanceStatus(ctx context.Context, id string) (Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.ReadAll(ctx)
	if err != nil {
		return Order{}, false, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = orders[i].Status.Next()
		if err := s.write(ctx, orders); err != nil {
			return Order{}, false, err
		}
		return orders[i], true, nil
	}
	return Order{}, false, nil
}

// Replace overwrites the whole list. Used when importing a history.
func (s *Store) Replace(ctx context.Context, orders []Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, orders)
}

func (s *Store) write(ctx context.Context, orders []Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write orders: %w", err)
	}
	return nil
}

// lockStripes is the number of mutexes shared by all profiles.
const lockStripes = 256

// Stores hands out per-profile stores. Profiles are serialized through a
// fixed set of striped mutexes, so concurrent requests from the same profile
// do not lose each other's writes inside this process and memory does not
// grow with the number of profiles seen.
type Stores struct {
	backend storage.Storage
	locks   [lockStripes]sync.Mutex
}

// NewStores creates a store factory over a backend.
func NewStores(backend storage.Storage) *Stores {
	return &Stores{backend: backend}
}

// ForProfile returns the order store of a profile.
func (s *Stores) ForProfile(profileID uuid.UUID) *Store {
	return &Store{
		backend: s.backend,
		key:     storage.Key(profileID, OrdersBlob),
		mu:      s.lockFor(profileID),
	}
}

func (s *Stores) lockFor(profileID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(profileID[:])
	return &s.locks[h.Sum32()%lockStripes]
}
