package ports

import (
	"context"
	"time"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

// Repository is the storage capability the booking core depends on.
// GetAll returns the whole collection in the store's iteration order.
// Add fills in the identifier when the caller leaves it zero.
// Get and Edit return domain.ErrNotFound for unknown identifiers.
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Add(ctx context.Context, entity *T) error
	Edit(ctx context.Context, entity *T) error
	Get(ctx context.Context, id int) (*T, error)
}

type RoomRepository = Repository[domain.Room]

type BookingRepository = Repository[domain.Booking]

type Clock interface {
	Now() time.Time
}

// Locker serializes writers that share a key across processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
	Close() error
}
