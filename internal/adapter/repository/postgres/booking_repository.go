package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

type bookingRow struct {
	ID          int       `db:"id"`
	CustomerID  int       `db:"customer_id"`
	RoomID      int       `db:"room_id"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	IsActive    bool      `db:"is_active"`
	IsCheckedIn bool      `db:"is_checked_in"`
	Status      string    `db:"status"`
}

func (r bookingRow) toDomain() domain.Booking {
	return domain.Booking{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		RoomID:      r.RoomID,
		StartDate:   domain.DateOf(r.StartDate),
		EndDate:     domain.DateOf(r.EndDate),
		IsActive:    r.IsActive,
		IsCheckedIn: r.IsCheckedIn,
		Status:      domain.BookingStatus(r.Status),
	}
}

const bookingColumns = `id, customer_id, room_id, start_date, end_date, is_active, is_checked_in, status`

type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetAll(ctx context.Context) ([]domain.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+bookingColumns+` FROM bookings ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toDomain())
	}

	return bookings, nil
}

func (r *BookingRepository) Get(ctx context.Context, id int) (*domain.Booking, error) {
	var row bookingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}

	booking := row.toDomain()

	return &booking, nil
}

func (r *BookingRepository) Add(ctx context.Context, booking *domain.Booking) error {
	if booking.ID != 0 {
		return r.addWithID(ctx, booking)
	}

	query := `
	INSERT INTO bookings (customer_id, room_id, start_date, end_date, is_active, is_checked_in, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query, booking.CustomerID, booking.RoomID,
		booking.StartDate, booking.EndDate, booking.IsActive, booking.IsCheckedIn, string(booking.Status)).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

// addWithID inserts a booking that already carries an id and moves the id
// sequence past it, so later RETURNING inserts cannot reuse that id.
func (r *BookingRepository) addWithID(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
	INSERT INTO bookings (` + bookingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, query, booking.ID, booking.CustomerID, booking.RoomID,
		booking.StartDate, booking.EndDate, booking.IsActive, booking.IsCheckedIn, string(booking.Status))
	if err != nil {
		return fmt.Errorf("failed to insert booking %d: %w", booking.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
	SELECT setval(pg_get_serial_sequence('bookings', 'id'), GREATEST((SELECT MAX(id) FROM bookings), 1))
	`)
	if err != nil {
		return fmt.Errorf("failed to advance booking id sequence: %w", err)
	}

	return tx.Commit()
}

func (r *BookingRepository) Edit(ctx context.Context, booking *domain.Booking) error {
	query := `
	UPDATE bookings
	SET customer_id = $1,
		room_id = $2,
		start_date = $3,
		end_date = $4,
		is_active = $5,
		is_checked_in = $6,
		status = $7
	WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query, booking.CustomerID, booking.RoomID, booking.StartDate,
		booking.EndDate, booking.IsActive, booking.IsCheckedIn, string(booking.Status), booking.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking %d: %w", booking.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("booking %d: %w", booking.ID, domain.ErrNotFound)
	}

	return nil
}
