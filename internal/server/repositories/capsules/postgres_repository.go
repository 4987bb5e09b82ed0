// Package capsules provides the PostgreSQL-backed capsule store.
package capsules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

const capsuleColumns = `id, owner_id, message, unlock_at, unlock_code, retired, attachment_key, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Capsule) error {
	query := `
		INSERT INTO capsules (id, owner_id, message, unlock_at, unlock_code, retired, attachment_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Message, c.UnlockAt, c.UnlockCode, c.Retired, c.AttachmentKey, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Capsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM capsules WHERE id = $1 AND owner_id = $2`
	return scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, ownerID, id string) (*models.Capsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM capsules WHERE id = $1 AND owner_id = $2 FOR UPDATE`
	return scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM capsules WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// ListByOwner returns one page of the owner's capsules, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Capsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM capsules
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select capsules: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Capsule, 0, limit)
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the mutable fields back. Zero rows affected means the
// capsule vanished or belongs to someone else.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Capsule) error {
	query := `
		UPDATE capsules
		SET message = $1, unlock_at = $2, attachment_key = $3, updated_at = $4
		WHERE id = $5 AND owner_id = $6
	`
	res, err := r.db.ExecContext(ctx, query, c.Message, c.UnlockAt, c.AttachmentKey, c.UpdatedAt, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM capsules WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) MarkRetired(ctx context.Context, cutoff, now time.Time) (int64, error) {
	query := `
		UPDATE capsules
		SET retired = TRUE, updated_at = $1
		WHERE retired = FALSE AND unlock_at < $2
	`
	res, err := r.db.ExecContext(ctx, query, now, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCapsule(s scanner) (*models.Capsule, error) {
	var (
		c   models.Capsule
		key sql.NullString
	)
	if err := s.Scan(&c.ID, &c.OwnerID, &c.Message, &c.UnlockAt, &c.UnlockCode, &c.Retired, &key, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if key.Valid {
		c.AttachmentKey = &key.String
	}
	return &c, nil
}

func scanOne(row *sql.Row) (*models.Capsule, error) {
	c, err := scanCapsule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
