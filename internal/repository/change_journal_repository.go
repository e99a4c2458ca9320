package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/db"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

type ChangeJournalRepository struct {
	DB *db.Postgres
}

func (r ChangeJournalRepository) Append(ctx context.Context, name string, changes []domain.Change) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(`
			INSERT INTO catalog_changes (catalog, item_id, field, before, after, committed_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, name, int32(c.ItemID), c.Field, c.Before, c.After, c.CommittedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r ChangeJournalRepository) List(ctx context.Context, name string, limit int) ([]domain.Change, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, item_id, field, before, after, committed_at
		FROM catalog_changes
		WHERE catalog=$1
		ORDER BY committed_at DESC, id DESC
		LIMIT $2
	`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Change
	for rows.Next() {
		var c domain.Change
		var itemID int32
		if err := rows.Scan(&c.Seq, &itemID, &c.Field, &c.Before, &c.After, &c.CommittedAt); err != nil {
			return nil, err
		}
		c.ItemID = domain.ID(itemID)
		out = append(out, c)
	}
	return out, rows.Err()
}
