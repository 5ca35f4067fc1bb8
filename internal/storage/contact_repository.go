package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/libs/db"
)

type ContactRepository struct {
	pool *db.Pool
}

func NewContactRepository(pool *db.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *ContactRepository) Create(ctx context.Context, tx pgx.Tx, c model.Contact) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO contacts (id, name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Email, c.Phone, c.Subject, c.Message)
	return err
}

var contactSortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"subject":   "subject",
	"createdAt": "created_at",
}

func (r *ContactRepository) List(ctx context.Context, opts ListOptions) ([]model.Contact, int, error) {
	where := ``
	args := []any{}
	if opts.SearchTerm != "" {
		where = `WHERE name ILIKE $1 OR email ILIKE $1 OR subject ILIKE $1`
		args = append(args, "%"+opts.SearchTerm+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := opts.OrderBy(contactSortColumns, "created_at DESC")
	args = append(args, opts.Limit, opts.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, subject, message, is_read, created_at
		FROM contacts
		`+where+`
		ORDER BY `+orderBy+`
		LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message, &c.IsRead, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return contacts, total, nil
}

func (r *ContactRepository) MarkRead(ctx context.Context, id string) (model.Contact, error) {
	var c model.Contact
	err := r.pool.QueryRow(ctx, `
		UPDATE contacts
		SET is_read = true
		WHERE id = $1
		RETURNING id, name, email, phone, subject, message, is_read, created_at
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message, &c.IsRead, &c.CreatedAt)
	if err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
