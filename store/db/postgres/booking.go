package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/schedula/store"
)

// dbtx abstracts over *sql.DB and *sql.Tx so the guarded variants can reuse
// the same statements inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (d *DB) CreateBooking(ctx context.Context, create *store.Booking) (*store.Booking, error) {
	return createBooking(ctx, d.db, create)
}

func (d *DB) CreateBookingIfFree(ctx context.Context, create *store.Booking) (*store.Booking, error) {
	// Serializable keeps two concurrent guarded creates from both passing the
	// overlap count before either inserts.
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := countOverlapping(ctx, tx, create.StartTs, create.EndTs, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, store.ErrBookingConflict
	}

	booking, err := createBooking(ctx, tx, create)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking create: %w", err)
	}
	return booking, nil
}

func createBooking(ctx context.Context, db dbtx, create *store.Booking) (*store.Booking, error) {
	fields := []string{"uid", "title", "description", "category", "start_ts", "end_ts", "client_name"}
	placeholderValues := []any{
		create.UID, create.Title, create.Description, create.Category,
		create.StartTs, create.EndTs, create.ClientName,
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO booking (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return create, nil
}

func (d *DB) ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error) {
	return listBookings(ctx, d.db, find)
}

func listBookings(ctx context.Context, db dbtx, find *store.FindBooking) ([]*store.Booking, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "booking.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "booking.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartFrom; v != nil {
		where, args = append(where, "booking.start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartBefore; v != nil {
		where, args = append(where, "booking.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.OverlapEnd; v != nil {
		where, args = append(where, "booking.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.OverlapStart; v != nil {
		where, args = append(where, "booking.end_ts > "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Category; v != nil {
		where, args = append(where, "booking.category = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ContainsText; v != nil {
		pattern := "%" + *v + "%"
		where = append(where, `(
			booking.title ILIKE `+placeholder(len(args)+1)+`
			OR booking.description ILIKE `+placeholder(len(args)+2)+`
			OR booking.client_name ILIKE `+placeholder(len(args)+3)+`)`)
		args = append(args, pattern, pattern, pattern)
	}
	if v := find.ExcludeID; v != nil {
		where, args = append(where, "booking.id != "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, created_ts, updated_ts,
			title, description, category,
			start_ts, end_ts, client_name
		FROM booking
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY booking.start_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Booking, 0)
	for rows.Next() {
		var booking store.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.UID,
			&booking.CreatedTs,
			&booking.UpdatedTs,
			&booking.Title,
			&booking.Description,
			&booking.Category,
			&booking.StartTs,
			&booking.EndTs,
			&booking.ClientName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		list = append(list, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateBookingIfFree(ctx context.Context, update *store.UpdateBooking) (*store.Booking, error) {
	if update.StartTs == nil || update.EndTs == nil {
		return nil, fmt.Errorf("guarded booking update requires both start and end timestamps")
	}

	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := countOverlapping(ctx, tx, *update.StartTs, *update.EndTs, &update.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, store.ErrBookingConflict
	}

	booking, err := updateBooking(ctx, tx, update)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking update: %w", err)
	}
	return booking, nil
}

func updateBooking(ctx context.Context, db dbtx, update *store.UpdateBooking) (*store.Booking, error) {
	set, args := []string{}, []any{}

	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Category; v != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ClientName; v != nil {
		set, args = append(set, "client_name = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)

	stmt := `UPDATE booking SET ` + strings.Join(set, ", ") +
		` WHERE id = ` + placeholder(len(args)) +
		` RETURNING id, uid, created_ts, updated_ts, title, description, category, start_ts, end_ts, client_name`

	var booking store.Booking
	if err := db.QueryRowContext(ctx, stmt, args...).Scan(
		&booking.ID,
		&booking.UID,
		&booking.CreatedTs,
		&booking.UpdatedTs,
		&booking.Title,
		&booking.Description,
		&booking.Category,
		&booking.StartTs,
		&booking.EndTs,
		&booking.ClientName,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("booking not found")
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	return &booking, nil
}

func (d *DB) DeleteBooking(ctx context.Context, delete *store.DeleteBooking) error {
	stmt := `DELETE FROM booking WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// countOverlapping counts bookings intersecting the half-open range
// [startTs, endTs). Touching boundaries do not count. It runs through the
// shared list query so the guarded variants use the same overlap predicate
// inside their transaction.
func countOverlapping(ctx context.Context, db dbtx, startTs, endTs int64, excludeID *int32) (int, error) {
	matches, err := listBookings(ctx, db, &store.FindBooking{
		OverlapStart: &startTs,
		OverlapEnd:   &endTs,
		ExcludeID:    excludeID,
	})
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}
