package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

// Store keeps entities in insertion order behind a RWMutex. Callers always get
// copies, so mutating a returned entity does not change the store until Edit.
type Store[T any] struct {
	mu     sync.RWMutex
	items  []T
	index  map[int]int
	lastID int
	idOf   func(*T) *int
}

// NewStore panics when seed holds two entities with the same id.
func NewStore[T any](idOf func(*T) *int, seed ...T) *Store[T] {
	s := &Store[T]{
		index: make(map[int]int),
		idOf:  idOf,
	}

	for i := range seed {
		if err := s.add(&seed[i]); err != nil {
			panic(fmt.Sprintf("memory: invalid seed: %v", err))
		}
	}

	return s
}

func NewRoomStore(rooms ...domain.Room) *Store[domain.Room] {
	return NewStore((*domain.Room).Identifier, rooms...)
}

func NewBookingStore(bookings ...domain.Booking) *Store[domain.Booking] {
	return NewStore((*domain.Booking).Identifier, bookings...)
}

// SeedRooms returns rooms numbered 1..n.
func SeedRooms(n int) []domain.Room {
	rooms := make([]domain.Room, n)
	for i := range rooms {
		rooms[i] = domain.Room{ID: i + 1}
	}

	return rooms
}

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)

	return out, nil
}

func (s *Store[T]) Add(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.add(entity)
}

func (s *Store[T]) add(entity *T) error {
	id := s.idOf(entity)
	if *id == 0 {
		*id = s.lastID + 1
	}

	if _, exists := s.index[*id]; exists {
		return fmt.Errorf("entity %d already exists", *id)
	}

	if *id > s.lastID {
		s.lastID = *id
	}

	s.index[*id] = len(s.items)
	s.items = append(s.items, *entity)

	return nil
}

func (s *Store[T]) Edit(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := *s.idOf(entity)
	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}

	s.items[pos] = *entity

	return nil
}

func (s *Store[T]) Get(ctx context.Context, id int) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}

	entity := s.items[pos]

	return &entity, nil
}
