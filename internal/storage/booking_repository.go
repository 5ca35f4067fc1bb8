package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/courtbook/internal/availability"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/libs/db"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b *model.Booking) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bookings
			(id, facility_id, user_id, date, start_time, end_time, payable_amount, is_booked, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, b.ID, b.FacilityID, b.UserID, b.Date, b.StartTime, b.EndTime, b.PayableAmount, b.IsBooked, b.PaymentStatus)
	return err
}

const bookingColumns = `
	b.id, b.facility_id, b.user_id, b.date, b.start_time, b.end_time,
	b.payable_amount, b.is_booked, b.payment_status, COALESCE(b.transaction_id, ''), b.created_at,
	f.id, f.name, f.description, f.price_per_hour, f.location, COALESCE(f.image_url, ''), f.is_deleted, f.created_at, f.updated_at`

func scanBookingWithFacility(row rowScanner) (model.Booking, error) {
	var b model.Booking
	var f model.Facility
	err := row.Scan(
		&b.ID, &b.FacilityID, &b.UserID, &b.Date, &b.StartTime, &b.EndTime,
		&b.PayableAmount, &b.IsBooked, &b.PaymentStatus, &b.TransactionID, &b.CreatedAt,
		&f.ID, &f.Name, &f.Description, &f.PricePerHour, &f.Location, &f.ImageURL, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	b.Facility = &f
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (model.Booking, error) {
	return scanBookingWithFacility(r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		JOIN facilities f ON f.id = b.facility_id
		WHERE b.id = $1
	`, id))
}

// GetForUpdate locks the booking row inside tx. When userID is non-empty the
// booking must belong to that user; a mismatch reads as not found.
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id, userID string) (model.Booking, error) {
	query := `
		SELECT id, facility_id, user_id, date, start_time, end_time,
			payable_amount, is_booked, payment_status, COALESCE(transaction_id, ''), created_at
		FROM bookings
		WHERE id = $1`
	args := []any{id}
	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	query += ` FOR UPDATE`

	var b model.Booking
	err := tx.QueryRow(ctx, query, args...).Scan(
		&b.ID, &b.FacilityID, &b.UserID, &b.Date, &b.StartTime, &b.EndTime,
		&b.PayableAmount, &b.IsBooked, &b.PaymentStatus, &b.TransactionID, &b.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepository) Cancel(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `
		UPDATE bookings
		SET is_booked = 'canceled'
		WHERE id = $1
	`, id)
	return err
}

// BookedSlots returns the start/end pairs of non-cancelled bookings for a
// date, optionally scoped to one facility.
func (r *BookingRepository) BookedSlots(ctx context.Context, date, facilityID string) ([]availability.Slot, error) {
	query := `
		SELECT start_time, end_time
		FROM bookings
		WHERE date = $1 AND is_booked <> 'canceled'`
	args := []any{date}
	if facilityID != "" {
		query += ` AND facility_id = $2`
		args = append(args, facilityID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []availability.Slot
	for rows.Next() {
		var s availability.Slot
		if err := rows.Scan(&s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return slots, nil
}

var bookingSortColumns = map[string]string{
	"date":          "b.date",
	"startTime":     "b.start_time",
	"payableAmount": "b.payable_amount",
	"createdAt":     "b.created_at",
}

// List returns bookings with facility and user populated, optionally filtered
// by date and facility.
func (r *BookingRepository) List(ctx context.Context, opts ListOptions, date, facilityID string) ([]model.Booking, int, error) {
	where := `WHERE 1=1`
	args := []any{}
	if date != "" {
		args = append(args, date)
		where += ` AND b.date = $` + itoa(len(args))
	}
	if facilityID != "" {
		args = append(args, facilityID)
		where += ` AND b.facility_id = $` + itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings b `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := opts.OrderBy(bookingSortColumns, "b.created_at DESC")
	args = append(args, opts.Limit, opts.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`,
			u.id, u.name, u.email, u.phone, u.role, u.address, u.created_at
		FROM bookings b
		JOIN facilities f ON f.id = b.facility_id
		JOIN users u ON u.id = b.user_id
		`+where+`
		ORDER BY `+orderBy+`
		LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		var f model.Facility
		var u model.User
		if err := rows.Scan(
			&b.ID, &b.FacilityID, &b.UserID, &b.Date, &b.StartTime, &b.EndTime,
			&b.PayableAmount, &b.IsBooked, &b.PaymentStatus, &b.TransactionID, &b.CreatedAt,
			&f.ID, &f.Name, &f.Description, &f.PricePerHour, &f.Location, &f.ImageURL, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt,
			&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Address, &u.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		b.Facility = &f
		b.User = &u
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return bookings, total, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Booking, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := opts.OrderBy(bookingSortColumns, "b.created_at DESC")
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		JOIN facilities f ON f.id = b.facility_id
		WHERE b.user_id = $1
		ORDER BY `+orderBy+`
		LIMIT $2 OFFSET $3
	`, userID, opts.Limit, opts.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBookingWithFacility(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return bookings, total, nil
}

func (r *BookingRepository) SetTransactionID(ctx context.Context, tx pgx.Tx, bookingID, transactionID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE bookings
		SET transaction_id = $2
		WHERE id = $1
	`, bookingID, transactionID)
	return err
}

func (r *BookingRepository) SetPaymentStatusByTransaction(ctx context.Context, tx pgx.Tx, transactionID, status string) (model.Booking, error) {
	var b model.Booking
	err := tx.QueryRow(ctx, `
		UPDATE bookings
		SET payment_status = $2
		WHERE transaction_id = $1
		RETURNING id, facility_id, user_id, date, start_time, end_time,
			payable_amount, is_booked, payment_status, COALESCE(transaction_id, ''), created_at
	`, transactionID, status).Scan(
		&b.ID, &b.FacilityID, &b.UserID, &b.Date, &b.StartTime, &b.EndTime,
		&b.PayableAmount, &b.IsBooked, &b.PaymentStatus, &b.TransactionID, &b.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&n)
	return n, err
}

func (r *BookingRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(payable_amount), 0)
		FROM bookings
		WHERE payment_status = 'paid'
	`).Scan(&total)
	return total, err
}

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// MonthlyRevenue sums paid bookings per calendar month over the trailing
// window, oldest first.
func (r *BookingRepository) MonthlyRevenue(ctx context.Context, months int) ([]MonthRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
			COALESCE(sum(payable_amount), 0)
		FROM bookings
		WHERE payment_status = 'paid'
			AND created_at >= date_trunc('month', now()) - make_interval(months => $1 - 1)
		GROUP BY 1
		ORDER BY 1
	`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthRevenue
	for rows.Next() {
		var m MonthRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *BookingRepository) Recent(ctx context.Context, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		JOIN facilities f ON f.id = b.facility_id
		ORDER BY b.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBookingWithFacility(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}
