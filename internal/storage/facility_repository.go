package storage

import (
	"context"

	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/libs/db"
)

type FacilityRepository struct {
	pool *db.Pool
}

func NewFacilityRepository(pool *db.Pool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

const facilityColumns = `id, name, description, price_per_hour, location, COALESCE(image_url, ''), is_deleted, created_at, updated_at`

func (r *FacilityRepository) Create(ctx context.Context, f model.Facility) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO facilities (id, name, description, price_per_hour, location, image_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	`, f.ID, f.Name, f.Description, f.PricePerHour, f.Location, f.ImageURL)
	return err
}

// GetActive returns the facility only when it has not been soft-deleted.
func (r *FacilityRepository) GetActive(ctx context.Context, id string) (model.Facility, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+facilityColumns+`
		FROM facilities
		WHERE id = $1 AND is_deleted = false
	`, id))
}

// GetAny returns the facility regardless of its soft-delete flag.
func (r *FacilityRepository) GetAny(ctx context.Context, id string) (model.Facility, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT `+facilityColumns+`
		FROM facilities
		WHERE id = $1
	`, id))
}

func (r *FacilityRepository) Update(ctx context.Context, f model.Facility) (model.Facility, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE facilities
		SET name = $2,
			description = $3,
			price_per_hour = $4,
			location = $5,
			image_url = NULLIF($6, ''),
			updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING `+facilityColumns+`
	`, f.ID, f.Name, f.Description, f.PricePerHour, f.Location, f.ImageURL))
}

func (r *FacilityRepository) SoftDelete(ctx context.Context, id string) (model.Facility, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE facilities
		SET is_deleted = true,
			updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING `+facilityColumns+`
	`, id))
}

var facilitySortColumns = map[string]string{
	"name":         "name",
	"pricePerHour": "price_per_hour",
	"location":     "location",
	"createdAt":    "created_at",
}

// ListActive returns non-deleted facilities, optionally filtered by search
// term (name/location) and a location filter.
func (r *FacilityRepository) ListActive(ctx context.Context, opts ListOptions, location string) ([]model.Facility, int, error) {
	where := `WHERE is_deleted = false`
	args := []any{}
	if opts.SearchTerm != "" {
		args = append(args, "%"+opts.SearchTerm+"%")
		where += ` AND (name ILIKE $` + itoa(len(args)) + ` OR location ILIKE $` + itoa(len(args)) + `)`
	}
	if location != "" {
		args = append(args, location)
		where += ` AND location = $` + itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM facilities `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := opts.OrderBy(facilitySortColumns, "created_at DESC")
	args = append(args, opts.Limit, opts.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+facilityColumns+`
		FROM facilities
		`+where+`
		ORDER BY `+orderBy+`
		LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var facilities []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.PricePerHour, &f.Location, &f.ImageURL, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		facilities = append(facilities, f)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return facilities, total, nil
}

func (r *FacilityRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM facilities WHERE is_deleted = false`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *FacilityRepository) scanOne(row rowScanner) (model.Facility, error) {
	var f model.Facility
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.PricePerHour, &f.Location, &f.ImageURL, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return model.Facility{}, err
	}
	return f, nil
}
