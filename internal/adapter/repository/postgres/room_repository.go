package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type RoomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetAll(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := r.db.SelectContext(ctx, &rooms, `SELECT id FROM rooms ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

func (r *RoomRepository) Get(ctx context.Context, id int) (*domain.Room, error) {
	var room domain.Room
	err := r.db.QueryRowxContext(ctx, `SELECT id FROM rooms WHERE id = $1`, id).Scan(&room.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %d: %w", id, domain.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get room %d: %w", id, err)
	}

	return &room, nil
}

func (r *RoomRepository) Add(ctx context.Context, room *domain.Room) error {
	if room.ID == 0 {
		err := r.db.QueryRowxContext(ctx, `
		INSERT INTO rooms (id)
		SELECT COALESCE(MAX(id), 0) + 1 FROM rooms
		RETURNING id
		`).Scan(&room.ID)
		if err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}

		return nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO rooms (id) VALUES ($1)`, room.ID); err != nil {
		return fmt.Errorf("failed to insert room %d: %w", room.ID, err)
	}

	return nil
}

// Edit only confirms the room exists; rooms carry no mutable columns.
func (r *RoomRepository) Edit(ctx context.Context, room *domain.Room) error {
	_, err := r.Get(ctx, room.ID)
	return err
}
