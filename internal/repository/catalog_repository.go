package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/db"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// CatalogRepository stores catalog snapshots in Postgres, one row per entity.
type CatalogRepository struct {
	DB *db.Postgres
}

// Save replaces the stored snapshot of name with cat in a single transaction.
func (r CatalogRepository) Save(ctx context.Context, name string, cat *catalog.Catalog) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO catalogs (name, saved_at)
		VALUES ($1, now())
		ON CONFLICT (name) DO UPDATE SET saved_at=now()
	`, name); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM catalog_entities WHERE catalog=$1`, name); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, e := range allEntities(cat) {
		payload, err := encodeEntity(e)
		if err != nil {
			return err
		}
		ref := e.Ref()
		batch.Queue(`
			INSERT INTO catalog_entities (catalog, kind, id, name, payload)
			VALUES ($1,$2,$3,$4,$5)
		`, name, ref.Kind.Slug(), int32(ref.ID), e.DisplayName(), string(payload))
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert entities: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Load rebuilds the snapshot saved under name.
func (r CatalogRepository) Load(ctx context.Context, name string) (*catalog.Catalog, error) {
	var exists bool
	if err := r.DB.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM catalogs WHERE name=$1)`, name).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("catalog %q: %w", name, domain.ErrNotFound)
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT kind, payload::text
		FROM catalog_entities
		WHERE catalog=$1
		ORDER BY kind ASC, id ASC
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cat := catalog.New()
	for rows.Next() {
		var slug, payload string
		if err := rows.Scan(&slug, &payload); err != nil {
			return nil, err
		}
		kind, err := domain.ParseKind(slug)
		if err != nil {
			return nil, err
		}
		e, err := decodeEntity(kind, []byte(payload))
		if err != nil {
			return nil, err
		}
		if err := cat.Insert(e); err != nil {
			return nil, err
		}
	}
	return cat, rows.Err()
}

// Names lists the stored catalogs by name.
func (r CatalogRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT name FROM catalogs ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete drops a stored catalog, its entities and its preferences. The
// journal is kept.
func (r CatalogRepository) Delete(ctx context.Context, name string) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM catalogs WHERE name=$1`, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("catalog %q: %w", name, domain.ErrNotFound)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM editor_preferences WHERE catalog=$1`, name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
